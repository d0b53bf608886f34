package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/monitoring"
	"github.com/iliyamo/cinema-booking/internal/queue"
)

// DefaultGrid is the seat layout used when none is configured.
var DefaultGrid = model.Grid{Rows: 10, Cols: 10}

// BookingEngine creates and cancels tickets.  At most one live ticket can
// hold a given seat of a given showtime; Book checks and inserts under the
// ledger's exclusive lock so racing attempts for one seat have exactly one
// winner.
type BookingEngine struct {
	ledger   *Ledger
	catalog  catalog.Accessor
	grid     model.Grid
	notifier queue.Notifier
	now      func() time.Time
}

// NewBookingEngine wires an engine.  A nil notifier disables events and a
// zero grid falls back to DefaultGrid.
func NewBookingEngine(l *Ledger, cat catalog.Accessor, grid model.Grid, n queue.Notifier) *BookingEngine {
	if grid.Rows <= 0 || grid.Cols <= 0 {
		grid = DefaultGrid
	}
	if n == nil {
		n = queue.NopNotifier{}
	}
	return &BookingEngine{
		ledger:   l,
		catalog:  cat,
		grid:     grid,
		notifier: n,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Grid returns the seat layout applied to every showtime.
func (e *BookingEngine) Grid() model.Grid { return e.grid }

// BookedSeats returns the occupied seats of a showtime sorted by row then
// column.  The result is a snapshot and may be stale as soon as it returns.
func (e *BookingEngine) BookedSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := e.catalog.GetShowtime(showtimeID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	seats := make([]model.Seat, 0)
	e.ledger.read(func(st *model.AggregateState) {
		for _, t := range st.Tickets {
			if t.ShowtimeID == showtimeID {
				seats = append(seats, t.Seat())
			}
		}
	})
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Col < seats[j].Col
	})
	return seats, nil
}

// Book reserves a seat for a user.  The seat and showtime are validated
// before any lock is taken; the conflict check, the insert and the Save
// happen under the exclusive lock.
func (e *BookingEngine) Book(ctx context.Context, userID, showtimeID uint64, row, col int) (model.Ticket, error) {
	seat := model.Seat{Row: row, Col: col}
	if !e.grid.Contains(seat) {
		monitoring.TrackBooking(monitoring.OutcomeRejected)
		return model.Ticket{}, fmt.Errorf("%w: seat %s outside %dx%d grid", ErrInvalidReference, seat, e.grid.Rows, e.grid.Cols)
	}
	if _, err := e.catalog.GetShowtime(showtimeID); err != nil {
		monitoring.TrackBooking(monitoring.OutcomeRejected)
		return model.Ticket{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if _, ok := e.ledger.user(userID); !ok {
		monitoring.TrackBooking(monitoring.OutcomeRejected)
		return model.Ticket{}, fmt.Errorf("%w: user %d", ErrInvalidReference, userID)
	}

	var ticket model.Ticket
	err := e.ledger.apply(ctx, func(st *model.AggregateState) error {
		for _, t := range st.Tickets {
			if t.Occupies(showtimeID, seat) {
				return ErrSeatConflict
			}
		}
		ticket = model.Ticket{
			ID:         st.NextTicketID(),
			UserID:     userID,
			ShowtimeID: showtimeID,
			SeatRow:    row,
			SeatCol:    col,
			CreatedAt:  e.now(),
		}
		st.Tickets = append(st.Tickets, ticket)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrSeatConflict):
		monitoring.TrackBooking(monitoring.OutcomeConflict)
		return model.Ticket{}, err
	default:
		monitoring.TrackBooking(monitoring.OutcomeError)
		slog.Error("book failed", "user_id", userID, "showtime_id", showtimeID, "seat", seat.String(), "error", err)
		return model.Ticket{}, err
	}

	monitoring.TrackBooking(monitoring.OutcomeOK)
	slog.Info("ticket booked", "ticket_id", ticket.ID, "user_id", userID, "showtime_id", showtimeID, "seat", seat.String())
	e.notify(ctx, queue.TicketBooked, ticket)
	return ticket, nil
}

// TicketsForUser returns the user's live tickets ordered by ticket id.
func (e *BookingEngine) TicketsForUser(ctx context.Context, userID uint64) ([]model.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Ticket, 0)
	e.ledger.read(func(st *model.AggregateState) {
		for _, t := range st.Tickets {
			if t.UserID == userID {
				out = append(out, t)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Cancel removes a ticket owned by requestingUserID.  The seat is
// bookable again as soon as Cancel returns.
func (e *BookingEngine) Cancel(ctx context.Context, ticketID, requestingUserID uint64) error {
	var removed model.Ticket
	err := e.ledger.apply(ctx, func(st *model.AggregateState) error {
		for i, t := range st.Tickets {
			if t.ID != ticketID {
				continue
			}
			if t.UserID != requestingUserID {
				return ErrNotOwner
			}
			removed = t
			st.Tickets = append(st.Tickets[:i], st.Tickets[i+1:]...)
			return nil
		}
		return ErrNotFound
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotOwner):
		monitoring.TrackCancellation(monitoring.OutcomeRejected)
		return err
	default:
		monitoring.TrackCancellation(monitoring.OutcomeError)
		slog.Error("cancel failed", "ticket_id", ticketID, "user_id", requestingUserID, "error", err)
		return err
	}

	monitoring.TrackCancellation(monitoring.OutcomeOK)
	slog.Info("ticket cancelled", "ticket_id", ticketID, "user_id", requestingUserID)
	e.notify(ctx, queue.TicketCancelled, removed)
	return nil
}

// Describe joins a ticket with the movie title and showtime datetime it
// is displayed with.
func (e *BookingEngine) Describe(ctx context.Context, t model.Ticket) (model.TicketDetail, error) {
	if err := ctx.Err(); err != nil {
		return model.TicketDetail{}, err
	}
	show, err := e.catalog.GetShowtime(t.ShowtimeID)
	if err != nil {
		return model.TicketDetail{}, fmt.Errorf("%w: ticket %d: %v", ErrInvalidReference, t.ID, err)
	}
	movie, err := e.catalog.GetMovie(show.MovieID)
	if err != nil {
		return model.TicketDetail{}, fmt.Errorf("%w: ticket %d: %v", ErrInvalidReference, t.ID, err)
	}
	return model.TicketDetail{
		Ticket:     t,
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		StartsAt:   show.StartsAt,
	}, nil
}

// notify emits a committed ticket event.  Failures are logged only; the
// ticket change has already been persisted.
func (e *BookingEngine) notify(ctx context.Context, typ string, t model.Ticket) {
	ev := queue.TicketEvent{
		Type:       typ,
		TicketID:   t.ID,
		UserID:     t.UserID,
		ShowtimeID: t.ShowtimeID,
		Seat:       t.Seat().String(),
		OccurredAt: e.now(),
	}
	if d, err := e.Describe(ctx, t); err == nil {
		ev.MovieTitle = d.MovieTitle
		ev.StartsAt = d.StartsAt
	}
	if err := e.notifier.Notify(ctx, ev); err != nil {
		slog.Warn("ticket event not delivered", "type", typ, "ticket_id", t.ID, "error", err)
	}
}

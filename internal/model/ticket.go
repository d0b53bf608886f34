package model

import "time"

// Ticket binds a user, a showtime and a seat.  Its existence is the only
// evidence of a reservation: booking creates it and cancellation removes
// it.  Tickets are otherwise never modified.
//
// Fields:
//
//	ID         – engine-assigned identifier, never reused.
//	UserID     – owner of the ticket.
//	ShowtimeID – screening the seat belongs to.
//	SeatRow    – 1-indexed row.
//	SeatCol    – 1-indexed column.
//	CreatedAt  – booking timestamp (UTC).
type Ticket struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	ShowtimeID uint64    `json:"showtime_id"`
	SeatRow    int       `json:"seat_row"`
	SeatCol    int       `json:"seat_col"`
	CreatedAt  time.Time `json:"created_at"`
}

// Seat returns the ticket's seat coordinate.
func (t Ticket) Seat() Seat { return Seat{Row: t.SeatRow, Col: t.SeatCol} }

// Occupies reports whether the ticket holds the given seat of the given showtime.
func (t Ticket) Occupies(showtimeID uint64, s Seat) bool {
	return t.ShowtimeID == showtimeID && t.SeatRow == s.Row && t.SeatCol == s.Col
}

// TicketDetail is a ticket joined with the catalog data needed to display it.
type TicketDetail struct {
	Ticket
	MovieID    uint64    `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	StartsAt   time.Time `json:"datetime"`
}

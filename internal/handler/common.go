package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// Directory is the user directory as seen by the auth handlers.
type Directory interface {
	Register(ctx context.Context, username, password string) (uint64, error)
	Authenticate(ctx context.Context, username, password string) (uint64, error)
	Lookup(ctx context.Context, userID uint64) (model.User, error)
}

// Engine is the booking engine as seen by the ticket handlers.
type Engine interface {
	Grid() model.Grid
	BookedSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error)
	Book(ctx context.Context, userID, showtimeID uint64, row, col int) (model.Ticket, error)
	TicketsForUser(ctx context.Context, userID uint64) ([]model.Ticket, error)
	Cancel(ctx context.Context, ticketID, requestingUserID uint64) error
	Describe(ctx context.Context, t model.Ticket) (model.TicketDetail, error)
}

var (
	_ Directory = (*service.UserDirectory)(nil)
	_ Engine    = (*service.BookingEngine)(nil)
)

// getUserID extracts the authenticated user id set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrSeatConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidReference), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrIOFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}.  Internal details of storage
// failures are not exposed.
func respondError(c echo.Context, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		msg = "storage unavailable, try again"
	case http.StatusInternalServerError:
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

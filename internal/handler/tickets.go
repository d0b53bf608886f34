package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// TicketHandler exposes seat availability and the ticket lifecycle.  All
// methods except Seats assume JWTAuth has run.
type TicketHandler struct {
	Engine  Engine
	Catalog catalog.Accessor
}

func NewTicketHandler(engine Engine, cat catalog.Accessor) *TicketHandler {
	return &TicketHandler{Engine: engine, Catalog: cat}
}

type seatMapResp struct {
	ShowtimeID uint64       `json:"showtime_id"`
	Rows       int          `json:"rows"`
	Cols       int          `json:"cols"`
	Booked     []model.Seat `json:"booked"`
}

type bookReq struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Seats handles GET /v1/showtimes/:id/seats.  The answer is a snapshot and
// is never cached.
func (h *TicketHandler) Seats(c echo.Context) error {
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	if _, err := h.Catalog.GetShowtime(showID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	}
	booked, err := h.Engine.BookedSeats(c.Request().Context(), showID)
	if err != nil {
		return respondError(c, err)
	}
	grid := h.Engine.Grid()
	return c.JSON(http.StatusOK, seatMapResp{ShowtimeID: showID, Rows: grid.Rows, Cols: grid.Cols, Booked: booked})
}

// Book handles POST /v1/showtimes/:id/tickets with a {"row","col"} body.
func (h *TicketHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	if _, err := h.Catalog.GetShowtime(showID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	}
	var body bookReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	t, err := h.Engine.Book(ctx, userID, showID, body.Row, body.Col)
	if err != nil {
		return respondError(c, err)
	}
	d, err := h.Engine.Describe(ctx, t)
	if err != nil {
		// booked and persisted; only the display join failed
		return c.JSON(http.StatusCreated, model.TicketDetail{Ticket: t})
	}
	return c.JSON(http.StatusCreated, d)
}

// MyTickets handles GET /v1/my-tickets.  Tickets are ordered by id and
// carry the movie title and showtime for display.
func (h *TicketHandler) MyTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	tickets, err := h.Engine.TicketsForUser(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]model.TicketDetail, 0, len(tickets))
	for _, t := range tickets {
		d, err := h.Engine.Describe(ctx, t)
		if err != nil {
			slog.Warn("ticket without catalog entry", "ticket_id", t.ID, "showtime_id", t.ShowtimeID, "error", err)
			d = model.TicketDetail{Ticket: t}
		}
		out = append(out, d)
	}
	return c.JSON(http.StatusOK, out)
}

// Cancel handles DELETE /v1/tickets/:id.
func (h *TicketHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Engine.Cancel(c.Request().Context(), ticketID, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

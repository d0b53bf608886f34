// Package queue defines the ticket lifecycle events exchanged over the
// message broker, the publisher that sends them and the consumer that
// records them.
package queue

import (
	"context"
	"time"
)

// TicketEventsQueue is the durable queue carrying ticket lifecycle events.
const TicketEventsQueue = "ticket.events"

// Event types.
const (
	TicketBooked    = "TicketBooked"
	TicketCancelled = "TicketCancelled"
)

// TicketEvent is published after a booking or cancellation has been
// committed.  It carries enough information for downstream consumers to
// log or notify without reading the engine state.
type TicketEvent struct {
	Type       string    `json:"type"`
	TicketID   uint64    `json:"ticket_id"`
	UserID     uint64    `json:"user_id"`
	ShowtimeID uint64    `json:"showtime_id"`
	MovieTitle string    `json:"movie_title"`
	StartsAt   time.Time `json:"starts_at"`
	Seat       string    `json:"seat"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier receives committed ticket events.  Implementations must not
// block for long; the caller's result does not depend on the outcome.
type Notifier interface {
	Notify(ctx context.Context, ev TicketEvent) error
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, TicketEvent) error { return nil }

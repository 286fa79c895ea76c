package content

import (
	"context"
	"strconv"
	"time"
)

const (
	EventTicketCreated = "ticket.created"
	EventTicketUpdated = "ticket.updated"
	EventTicketDeleted = "ticket.deleted"
	EventReviewCreated = "review.created"
	EventReviewUpdated = "review.updated"
	EventReviewDeleted = "review.deleted"
)

type Event struct {
	Type     string    `json:"type"`
	TicketID uint      `json:"ticket_id"`
	ReviewID uint      `json:"review_id,omitempty"`
	UserID   uint      `json:"user_id"`
	Rating   *int      `json:"rating,omitempty"`
	At       time.Time `json:"at"`
}

// Key keeps every event of one ticket on the same partition.
func (e Event) Key() string { return strconv.FormatUint(uint64(e.TicketID), 10) }

type Publisher interface {
	WriteJSON(ctx context.Context, v any) error
}

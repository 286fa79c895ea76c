package feed

import (
	"sort"
	"time"

	"review-service/internal/content"
)

type Kind string

const (
	KindTicket Kind = "ticket"
	KindReview Kind = "review"
)

type Item struct {
	Kind      Kind            `json:"kind"`
	ID        uint            `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Author    string          `json:"author,omitempty"`
	Ticket    *content.Ticket `json:"ticket,omitempty"`
	Review    *content.Review `json:"review,omitempty"`
}

// Build merges tickets and reviews newest first into a fresh slice.
//
// Equal timestamps are ordered tickets before reviews, then by ascending id,
// so the result does not depend on input order. The inputs are copied, never
// reordered or aliased.
func Build(tickets []content.Ticket, reviews []content.Review) []Item {
	items := make([]Item, 0, len(tickets)+len(reviews))
	for i := range tickets {
		t := tickets[i]
		items = append(items, Item{Kind: KindTicket, ID: t.ID, Timestamp: t.CreatedAt, Ticket: &t})
	}
	for i := range reviews {
		r := reviews[i]
		items = append(items, Item{Kind: KindReview, ID: r.ID, Timestamp: r.CreatedAt, Review: &r})
	}
	sort.Slice(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}

func less(a, b Item) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	if a.Kind != b.Kind {
		return a.Kind == KindTicket
	}
	return a.ID < b.ID
}

// Page returns items[offset:offset+limit], clamped.
func Page(items []Item, limit, offset int) []Item {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []Item{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

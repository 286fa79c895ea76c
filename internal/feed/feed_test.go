package feed

import (
	"testing"
	"time"

	"review-service/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time { return time.Unix(int64(sec), 0).UTC() }

func keys(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		switch it.Kind {
		case KindTicket:
			out[i] = "T" + it.Ticket.Title
		case KindReview:
			out[i] = "R" + it.Review.Headline
		}
	}
	return out
}

func TestBuildOrdersNewestFirst(t *testing.T) {
	tickets := []content.Ticket{
		{ID: 1, Title: "1", CreatedAt: at(10)},
		{ID: 2, Title: "2", CreatedAt: at(30)},
	}
	reviews := []content.Review{{ID: 1, TicketID: 1, Headline: "1", CreatedAt: at(20)}}

	assert.Equal(t, []string{"T2", "R1", "T1"}, keys(Build(tickets, reviews)))
}

func TestBuildTieBreakIsDeterministic(t *testing.T) {
	tickets := []content.Ticket{{ID: 7, Title: "T", CreatedAt: at(5)}}
	reviews := []content.Review{{ID: 3, TicketID: 7, Headline: "R", CreatedAt: at(5)}}

	first := keys(Build(tickets, reviews))
	assert.Equal(t, []string{"TT", "RR"}, first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, keys(Build(tickets, reviews)))
	}
}

func TestBuildTieBreakByID(t *testing.T) {
	tickets := []content.Ticket{
		{ID: 9, Title: "9", CreatedAt: at(1)},
		{ID: 4, Title: "4", CreatedAt: at(1)},
	}
	reviews := []content.Review{
		{ID: 8, Headline: "8", CreatedAt: at(1)},
		{ID: 2, Headline: "2", CreatedAt: at(1)},
	}
	assert.Equal(t, []string{"T4", "T9", "R2", "R8"}, keys(Build(tickets, reviews)))
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	tickets := []content.Ticket{
		{ID: 1, Title: "old", CreatedAt: at(1)},
		{ID: 2, Title: "new", CreatedAt: at(2)},
	}
	reviews := []content.Review{{ID: 1, Headline: "r", CreatedAt: at(3)}}

	items := Build(tickets, reviews)
	require.Len(t, items, 3)
	items[0].Review.Headline = "changed"

	assert.Equal(t, "old", tickets[0].Title)
	assert.Equal(t, "new", tickets[1].Title)
	assert.Equal(t, "r", reviews[0].Headline)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build(nil, nil))
}

func TestPage(t *testing.T) {
	items := make([]Item, 5)
	for i := range items {
		items[i].ID = uint(i)
	}
	assert.Len(t, Page(items, 2, 0), 2)
	assert.Equal(t, uint(4), Page(items, 2, 4)[0].ID)
	assert.Empty(t, Page(items, 2, 10))
	assert.Len(t, Page(items, 0, 1), 4)
	assert.Len(t, Page(items, 3, -1), 3)
}

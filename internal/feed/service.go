package feed

import (
	"context"

	"review-service/internal/content"
	"review-service/internal/domain"
	"review-service/internal/user"
)

type ContentReader interface {
	ListTickets(ctx context.Context) ([]content.Ticket, error)
	ListReviews(ctx context.Context) ([]content.Review, error)
	TicketsByOwner(ctx context.Context, ownerIDs ...uint) ([]content.Ticket, error)
	ReviewsByOwner(ctx context.Context, ownerIDs ...uint) ([]content.Review, error)
	ReviewsOnTicketsOf(ctx context.Context, ownerID uint) ([]content.Review, error)
}

type FollowGraph interface {
	FollowedIDs(ctx context.Context, userID uint) ([]uint, error)
}

type Users interface {
	ByUsername(ctx context.Context, username string) (*user.User, error)
	UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error)
}

type Service interface {
	All(ctx context.Context) ([]Item, error)
	ByOwner(ctx context.Context, username string) ([]Item, error)
	ForUser(ctx context.Context, actor domain.Identity) ([]Item, error)
}

type service struct {
	content ContentReader
	graph   FollowGraph
	users   Users
}

func NewService(c ContentReader, g FollowGraph, u Users) Service {
	return &service{content: c, graph: g, users: u}
}

func (s *service) All(ctx context.Context) ([]Item, error) {
	tickets, err := s.content.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.content.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, Build(tickets, reviews))
}

func (s *service) ByOwner(ctx context.Context, username string) ([]Item, error) {
	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	tickets, err := s.content.TicketsByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.content.ReviewsByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, Build(tickets, reviews))
}

// ForUser covers the actor, everyone the actor follows and any review
// written on one of the actor's tickets.
func (s *service) ForUser(ctx context.Context, actor domain.Identity) ([]Item, error) {
	if actor.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	ids, err := s.graph.FollowedIDs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	ids = append(ids, actor.UserID)

	tickets, err := s.content.TicketsByOwner(ctx, ids...)
	if err != nil {
		return nil, err
	}
	reviews, err := s.content.ReviewsByOwner(ctx, ids...)
	if err != nil {
		return nil, err
	}
	replies, err := s.content.ReviewsOnTicketsOf(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(reviews))
	for _, r := range reviews {
		seen[r.ID] = struct{}{}
	}
	for _, r := range replies {
		if _, ok := seen[r.ID]; !ok {
			reviews = append(reviews, r)
		}
	}
	return s.annotate(ctx, Build(tickets, reviews))
}

func (s *service) annotate(ctx context.Context, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	set := map[uint]struct{}{}
	for _, it := range items {
		set[owner(it)] = struct{}{}
	}
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	names, err := s.users.UsernamesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Author = names[owner(items[i])]
	}
	return items, nil
}

func owner(it Item) uint {
	if it.Ticket != nil {
		return it.Ticket.UserID
	}
	return it.Review.UserID
}

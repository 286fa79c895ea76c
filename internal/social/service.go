package social

import (
	"context"
	"fmt"

	"review-service/internal/domain"
	"review-service/internal/user"
)

type Service interface {
	Follow(ctx context.Context, actor domain.Identity, username string) (FollowResult, error)
	Unfollow(ctx context.Context, actor domain.Identity, username string) error
	ListFollowing(ctx context.Context, username string) ([]string, error)
	ListFollowers(ctx context.Context, username string) ([]string, error)
	FollowedIDs(ctx context.Context, userID uint) ([]uint, error)
}

// UserLookup is the part of the user directory the graph needs.
type UserLookup interface {
	ByUsername(ctx context.Context, username string) (*user.User, error)
}

type service struct {
	repo  Repository
	users UserLookup
}

func NewService(r Repository, users UserLookup) Service { return &service{repo: r, users: users} }

func (s *service) target(ctx context.Context, actor domain.Identity, username string) (*user.User, error) {
	if actor.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if u.ID == actor.UserID {
		return nil, domain.ErrSelfFollow
	}
	return u, nil
}

func (s *service) Follow(ctx context.Context, actor domain.Identity, username string) (FollowResult, error) {
	u, err := s.target(ctx, actor, username)
	if err != nil {
		return FollowResult{}, err
	}
	created, err := s.repo.Follow(ctx, actor.UserID, u.ID)
	if err != nil {
		return FollowResult{}, err
	}
	return FollowResult{Username: u.Username, AlreadyFollowing: !created}, nil
}

func (s *service) Unfollow(ctx context.Context, actor domain.Identity, username string) error {
	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	return s.repo.Unfollow(ctx, actor.UserID, u.ID)
}

func (s *service) ListFollowing(ctx context.Context, username string) ([]string, error) {
	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFollowing(ctx, u.ID)
}

func (s *service) ListFollowers(ctx context.Context, username string) ([]string, error) {
	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFollowers(ctx, u.ID)
}

func (s *service) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.repo.FollowedIDs(ctx, userID)
}

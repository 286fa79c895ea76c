package user

import (
	"context"
	"errors"
	"fmt"

	"review-service/internal/clock"
	"review-service/internal/domain"
	"review-service/internal/shared/validate"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, in RegisterReq) (*User, error)
	Login(ctx context.Context, in LoginReq) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	ByID(ctx context.Context, id uint) (*User, error)
	UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
	cost  int
}

type Option func(*service)

// WithHashCost lowers bcrypt work in tests.
func WithHashCost(cost int) Option { return func(s *service) { s.cost = cost } }

func WithClock(c clock.Clock) Option { return func(s *service) { s.clock = c } }

func NewService(r Repository, opts ...Option) Service {
	s := &service{repo: r, clock: clock.NewSystem(), cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, in RegisterReq) (*User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.ByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Username: in.Username, PassHash: string(hash), CreatedAt: s.clock.Now()}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, in LoginReq) (*User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.repo.ByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PassHash), []byte(in.Password)) != nil {
		return nil, domain.ErrBadCredentials
	}
	return u, nil
}

func (s *service) ByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.ByUsername(ctx, username)
}

func (s *service) ByID(ctx context.Context, id uint) (*User, error) { return s.repo.ByID(ctx, id) }

func (s *service) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	return s.repo.UsernamesByID(ctx, ids)
}

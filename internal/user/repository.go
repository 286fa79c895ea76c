package user

import (
	"context"
	"errors"

	"review-service/internal/domain"
	"review-service/internal/shared/db"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	ByUsername(ctx context.Context, username string) (*User, error)
	ByID(ctx context.Context, id uint) (*User, error)
	UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Create(ctx context.Context, u *User) error {
	err := r.store.DB(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUsernameTaken
	}
	return err
}

func (r *repo) ByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.store.DB(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *repo) ByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := r.store.DB(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *repo) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []User
	if err := r.store.DB(ctx).Select("id", "username").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u.Username
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

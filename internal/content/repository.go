package content

import (
	"context"
	"errors"

	"review-service/internal/domain"
	"review-service/internal/shared/db"

	"gorm.io/gorm"
)

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error

	CreateTicket(ctx context.Context, t *Ticket) error
	TicketByID(ctx context.Context, id uint) (*Ticket, error)
	UpdateTicket(ctx context.Context, t *Ticket) error
	DeleteTicketCascade(ctx context.Context, id uint) (reviews int64, err error)
	AllTickets(ctx context.Context) ([]Ticket, error)
	TicketsByOwner(ctx context.Context, ownerIDs ...uint) ([]Ticket, error)

	CreateReview(ctx context.Context, rv *Review) error
	ReviewByID(ctx context.Context, id uint) (*Review, error)
	UpdateReview(ctx context.Context, rv *Review) error
	DeleteReview(ctx context.Context, id uint) error
	AllReviews(ctx context.Context) ([]Review, error)
	ReviewsByOwner(ctx context.Context, ownerIDs ...uint) ([]Review, error)
	ReviewsByTicket(ctx context.Context, ticketID uint) ([]Review, error)
	ReviewsOnTicketsOf(ctx context.Context, ownerID uint) ([]Review, error)
	HasReviewed(ctx context.Context, ticketID, userID uint) (bool, error)
}

type repo struct{ db *gorm.DB }

func NewRepository(s *db.Store) Repository { return &repo{db: s.Base} }

func (r *repo) WithTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repo{db: tx})
	})
}

func (r *repo) CreateTicket(ctx context.Context, t *Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repo) TicketByID(ctx context.Context, id uint) (*Ticket, error) {
	var t Ticket
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *repo) UpdateTicket(ctx context.Context, t *Ticket) error {
	res := r.db.WithContext(ctx).Model(t).
		Select("title", "description", "image", "updated_at").
		Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteTicketCascade(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("ticket_id = ?", id).Delete(&Review{})
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		res = tx.Delete(&Ticket{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return n, err
}

func (r *repo) AllTickets(ctx context.Context) ([]Ticket, error) {
	var out []Ticket
	err := r.db.WithContext(ctx).Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (r *repo) TicketsByOwner(ctx context.Context, ownerIDs ...uint) ([]Ticket, error) {
	out := []Ticket{}
	if len(ownerIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", ownerIDs).
		Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (r *repo) CreateReview(ctx context.Context, rv *Review) error {
	err := r.db.WithContext(ctx).Create(rv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateReview
	}
	return err
}

func (r *repo) ReviewByID(ctx context.Context, id uint) (*Review, error) {
	var rv Review
	if err := r.db.WithContext(ctx).First(&rv, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rv, nil
}

func (r *repo) UpdateReview(ctx context.Context, rv *Review) error {
	res := r.db.WithContext(ctx).Model(rv).
		Select("headline", "rating", "body", "updated_at").
		Updates(rv)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteReview(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) AllReviews(ctx context.Context) ([]Review, error) {
	var out []Review
	err := r.db.WithContext(ctx).Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (r *repo) ReviewsByOwner(ctx context.Context, ownerIDs ...uint) ([]Review, error) {
	out := []Review{}
	if len(ownerIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", ownerIDs).
		Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (r *repo) ReviewsByTicket(ctx context.Context, ticketID uint) ([]Review, error) {
	out := []Review{}
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).
		Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (r *repo) ReviewsOnTicketsOf(ctx context.Context, ownerID uint) ([]Review, error) {
	out := []Review{}
	err := r.db.WithContext(ctx).
		Where("ticket_id IN (?)", r.db.Model(&Ticket{}).Select("id").Where("user_id = ?", ownerID)).
		Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (r *repo) HasReviewed(ctx context.Context, ticketID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Review{}).
		Where("ticket_id = ? AND user_id = ?", ticketID, userID).
		Count(&n).Error
	return n > 0, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

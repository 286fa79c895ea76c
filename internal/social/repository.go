package social

import (
	"context"
	"sort"

	"review-service/internal/domain"
	"review-service/internal/shared/db"

	"gorm.io/gorm/clause"
)

type Repository interface {
	// Follow inserts the edge unless present; created is false when it already existed.
	Follow(ctx context.Context, follower, followed uint) (created bool, err error)
	Unfollow(ctx context.Context, follower, followed uint) error
	ListFollowing(ctx context.Context, userID uint) ([]string, error)
	ListFollowers(ctx context.Context, userID uint) ([]string, error)
	FollowedIDs(ctx context.Context, userID uint) ([]uint, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Follow(ctx context.Context, follower, followed uint) (bool, error) {
	if follower == followed {
		return false, domain.ErrSelfFollow
	}
	res := r.store.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&UserFollow{FollowerID: follower, FollowedID: followed})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Unfollow(ctx context.Context, follower, followed uint) error {
	res := r.store.DB(ctx).Delete(&UserFollow{}, "follower_id = ? AND followed_id = ?", follower, followed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFollowing
	}
	return nil
}

func (r *repo) ListFollowing(ctx context.Context, userID uint) ([]string, error) {
	return r.usernames(ctx, "users.id = user_follows.followed_id", "user_follows.follower_id = ?", userID)
}

func (r *repo) ListFollowers(ctx context.Context, userID uint) ([]string, error) {
	return r.usernames(ctx, "users.id = user_follows.follower_id", "user_follows.followed_id = ?", userID)
}

func (r *repo) usernames(ctx context.Context, on, where string, userID uint) ([]string, error) {
	out := []string{}
	err := r.store.DB(ctx).Model(&UserFollow{}).
		Joins("JOIN users ON "+on).
		Where(where, userID).
		Distinct().
		Pluck("users.username", &out).Error
	if err != nil {
		return nil, err
	}
	// sorted here so the order does not depend on the database collation
	sort.Strings(out)
	return out, nil
}

func (r *repo) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.store.DB(ctx).Model(&UserFollow{}).
		Where("follower_id = ?", userID).
		Order("followed_id").
		Pluck("followed_id", &ids).Error
	return ids, err
}

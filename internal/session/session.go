package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers revoked token ids until the tokens would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

type redisDenylist struct {
	r   *redis.Client
	now func() time.Time
}

func NewRedis(r *redis.Client) Denylist {
	return &redisDenylist{r: r, now: time.Now}
}

func key(tokenID string) string { return "revoked:" + tokenID }

func (d *redisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.r.SetNX(ctx, key(tokenID), "1", ttl).Err()
}

func (d *redisDenylist) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.r.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

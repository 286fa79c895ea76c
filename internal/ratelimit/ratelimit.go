package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"review-service/internal/domain"
	"review-service/internal/shared/httpx"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var ErrLimited = errors.New("rate limit exceeded")

// Limiter counts requests per key in fixed windows stored in Redis.
type Limiter struct{ R *redis.Client }

func New(r *redis.Client) *Limiter { return &Limiter{R: r} }

func (l *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := "rl:" + key
	pipe := l.R.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// LimitHTTP guards anonymous routes. keyFn usually returns the client IP.
func (l *Limiter) LimitHTTP(scope string, limit int64, window time.Duration, keyFn func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFn(r)
		if key == "" {
			key = "unknown"
		}
		if !l.admit(w, r, scope+":"+key, limit, window) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LimitUser guards authenticated routes, keyed by the caller's id.
func (l *Limiter) LimitUser(scope string, limit int64, window time.Duration, fn httpx.IdentityHandlerFunc) httpx.IdentityHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
		if !l.admit(w, r, scope+":user:"+strconv.FormatUint(uint64(id.UserID), 10), limit, window) {
			return nil
		}
		return fn(w, r, id)
	}
}

func (l *Limiter) admit(w http.ResponseWriter, r *http.Request, key string, limit int64, window time.Duration) bool {
	ok, n, err := l.Allow(r.Context(), key, limit, window)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("rate limiter unavailable")
		httpx.WriteError(w, http.StatusTooManyRequests, fmt.Errorf("rate limiter error"), "rate_limiter_error")
		return false
	}
	if !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
		httpx.WriteError(w, http.StatusTooManyRequests,
			fmt.Errorf("%w (count=%d, limit=%d)", ErrLimited, n, limit), "rate_limited")
		return false
	}
	return true
}

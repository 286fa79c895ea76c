package session

import (
	"context"
	"sync"
	"time"
)

// NewMemory keeps revocations in process. Used when Redis is not configured.
func NewMemory() Denylist {
	return &memDenylist{m: map[string]time.Time{}, now: time.Now}
}

type memDenylist struct {
	mu  sync.Mutex
	m   map[string]time.Time
	now func() time.Time
}

func (d *memDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if until.After(d.now()) {
		d.m[tokenID] = until
	}
	return nil
}

func (d *memDenylist) Revoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.m[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(d.now()) {
		delete(d.m, tokenID)
		return false, nil
	}
	return true, nil
}

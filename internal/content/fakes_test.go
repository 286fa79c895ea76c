package content

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"review-service/internal/clock"
	"review-service/internal/domain"
	"review-service/internal/shared/db/dbtest"
)

type memImages struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemImages() *memImages { return &memImages{objects: map[string][]byte{}} }

func (m *memImages) Put(_ context.Context, key, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("bucket unavailable")
	}
	m.objects[key] = data
	return nil
}

func (m *memImages) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memImages) URL(_ context.Context, key string) (string, error) {
	return "https://images.test/" + key, nil
}

func (m *memImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) WriteJSON(_ context.Context, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v.(Event))
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type env struct {
	svc    Service
	repo   Repository
	images *memImages
	events *recorder
}

var (
	alice = domain.Identity{UserID: 1, Username: "alice"}
	bob   = domain.Identity{UserID: 2, Username: "bob"}
)

func newEnv(t *testing.T) env {
	t.Helper()
	store := dbtest.Open(t, &Ticket{}, &Review{})
	repo := NewRepository(store)
	images := newMemImages()
	events := &recorder{}
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(repo, images, events, WithClock(clock.NewStep(start, time.Second)))
	return env{svc: svc, repo: repo, images: images, events: events}
}

func rating(n int) *int { return &n }

// pngBytes is a minimal PNG header, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func itoa(n uint) string { return strconv.FormatUint(uint64(n), 10) }

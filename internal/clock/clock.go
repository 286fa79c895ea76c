package clock

import (
	"sync"
	"time"
)

// Clock lets services stamp entities without reaching for time.Now.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

type fixedClock struct{ now time.Time }

// NewFixed always returns t. Tests use it to force equal timestamps.
func NewFixed(t time.Time) Clock { return fixedClock{now: t.UTC()} }

func (f fixedClock) Now() time.Time { return f.now }

// NewStep returns a clock that advances by d on every call, starting at t.
func NewStep(t time.Time, d time.Duration) Clock {
	return &stepClock{next: t.UTC(), d: d}
}

type stepClock struct {
	mu   sync.Mutex
	next time.Time
	d    time.Duration
}

func (s *stepClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.next
	s.next = s.next.Add(s.d)
	return now
}

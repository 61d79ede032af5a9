package shared

import (
	"sync"
	"time"
)

// Clock is the time source for cache expiry, journal timestamps, retry backoff and
// the pause between trading cycles
type Clock interface {
	Now() time.Time
	// After fires once d has passed on this clock
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// NewRealClock returns the wall clock. Now is always UTC.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time                         { return time.Now().UTC() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// MockClock is a manual clock for tests. Waiting on After never blocks: the clock
// jumps forward by d and the returned channel is already filled.
type MockClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewMockClock starts a MockClock at start, or at the current UTC time when start is zero
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.waits = append(m.waits, d)
	fired := m.now
	m.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- fired
	return ch
}

// Advance moves the clock forward without recording a wait
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Waits returns every duration passed to After, in call order
func (m *MockClock) Waits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.waits...)
}

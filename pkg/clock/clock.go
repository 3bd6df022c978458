package clock

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock. Instants are always in UTC.
func System() Clock { return systemClock{} }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// Mock is a settable Clock for tests. It is safe for concurrent use.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMock creates a Mock set to t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now returns the current mock instant.
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (m *Mock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

package engine

import (
	"sync"
	"time"
)

// TimeProvider supplies wall clock readings
type TimeProvider interface {
	Now() time.Time
}

// SystemTimeProvider reads the monotonic system clock
type SystemTimeProvider struct{}

func (SystemTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a controllable time source for testing
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: start}
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// Advance moves the mocked time forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

package mocks

import (
	"sync"

	"github.com/user/hwenc/pkg/ports"
)

// BufferPool is a mock implementation of ports.BufferPool.
type BufferPool struct {
	mu sync.Mutex

	AcquireFunc func(size int) (*ports.Buffer, error)

	// Recorded calls for verification
	Acquired int
	Released int
}

func (m *BufferPool) Acquire(size int) (*ports.Buffer, error) {
	m.mu.Lock()
	m.Acquired++
	m.mu.Unlock()
	if m.AcquireFunc != nil {
		return m.AcquireFunc(size)
	}
	return ports.NewBuffer(make([]byte, size), func(*ports.Buffer) {
		m.mu.Lock()
		m.Released++
		m.mu.Unlock()
	}), nil
}

// Counts returns the acquire and release counters.
func (m *BufferPool) Counts() (acquired, released int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Acquired, m.Released
}

var _ ports.BufferPool = (*BufferPool)(nil)

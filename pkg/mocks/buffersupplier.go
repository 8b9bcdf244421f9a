package mocks

import (
	"errors"
	"sync"

	"github.com/user/hwenc/pkg/pipeline"
	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/taskpool"
)

// ErrNoFreeBuffer is returned by BufferSupplier when every buffer is handed out.
var ErrNoFreeBuffer = errors.New("mocks: no free input buffer")

// BufferSupplier is a mock implementation of pipeline.BufferSupplier backed
// by a real task pool.
type BufferSupplier struct {
	mu   sync.Mutex
	pool *taskpool.Pool
	idle *taskpool.Queue

	AcquireFunc func() (pipeline.Frame, error)

	// Recorded calls for verification
	Acquired int
	Released []pipeline.Frame
}

// NewBufferSupplier creates a supplier with count buffers of format.
func NewBufferSupplier(format ports.VideoFormat, count int) *BufferSupplier {
	pool, err := taskpool.New(1, count, format, 1024)
	if err != nil {
		panic(err)
	}
	idle := taskpool.NewIdleQueue()
	for i := 0; i < pool.Size(); i++ {
		idle.Push(pool.Task(i))
	}
	return &BufferSupplier{pool: pool, idle: idle}
}

func (m *BufferSupplier) AcquireInputBuffer() (pipeline.Frame, error) {
	m.mu.Lock()
	m.Acquired++
	m.mu.Unlock()
	if m.AcquireFunc != nil {
		return m.AcquireFunc()
	}
	t := m.idle.TryPop()
	if t == nil {
		return pipeline.Frame{}, ErrNoFreeBuffer
	}
	return pipeline.Frame{Data: t.Surface.Data, Task: t}, nil
}

func (m *BufferSupplier) ReleaseInputBuffer(frame pipeline.Frame) {
	m.mu.Lock()
	m.Released = append(m.Released, frame)
	m.mu.Unlock()
	if frame.Task != nil && m.pool.Contains(frame.Task) {
		m.idle.Push(frame.Task)
	}
}

// Recycle returns a consumed frame's buffer to the free list.
func (m *BufferSupplier) Recycle(frame pipeline.Frame) {
	if frame.Task != nil && m.pool.Contains(frame.Task) {
		m.idle.Push(frame.Task)
	}
}

// Counts returns the acquire and release counters.
func (m *BufferSupplier) Counts() (acquired, released int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Acquired, len(m.Released)
}

var _ pipeline.BufferSupplier = (*BufferSupplier)(nil)

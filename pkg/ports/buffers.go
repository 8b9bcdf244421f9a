package ports

// Buffer is memory handed out by a BufferPool.
type Buffer struct {
	Data    []byte
	release func(*Buffer)
}

// NewBuffer wraps data; release is invoked once by Release.
func NewBuffer(data []byte, release func(*Buffer)) *Buffer {
	return &Buffer{Data: data, release: release}
}

// Release returns the buffer to its pool. Calling it twice is a no-op.
func (b *Buffer) Release() {
	if b == nil || b.release == nil {
		return
	}
	release := b.release
	b.release = nil
	release(b)
}

// BufferPool abstracts the downstream buffer pool output units are copied into.
type BufferPool interface {
	// Acquire returns a buffer whose Data has length size.
	// An error means the pool cannot serve the request right now.
	Acquire(size int) (*Buffer, error)
}

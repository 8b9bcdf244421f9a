// Package heappool implements ports.BufferPool on size-classed sync.Pools.
package heappool

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/user/hwenc/pkg/ports"
)

// ErrExhausted is returned when MaxOutstanding buffers are already in use.
var ErrExhausted = errors.New("heappool: too many outstanding buffers")

const (
	minClassShift = 10 // 1 KiB
	maxClassShift = 26 // 64 MiB
)

// Options configures a Pool.
type Options struct {
	// MaxPooled is the largest buffer kept for reuse. Larger buffers are
	// allocated and dropped.
	MaxPooled int
	// MaxOutstanding limits buffers handed out at once. Zero means no limit.
	MaxOutstanding int
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{MaxPooled: 4 << 20}
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Refused     int64
	Outstanding int64
}

// Pool hands out byte buffers rounded up to a power of two.
type Pool struct {
	opts    Options
	classes [maxClassShift - minClassShift + 1]sync.Pool

	outstanding atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	refused     atomic.Int64
}

// New creates a Pool.
func New(opts Options) (*Pool, error) {
	if opts.MaxPooled < 0 || opts.MaxOutstanding < 0 {
		return nil, fmt.Errorf("heappool: invalid options %+v", opts)
	}
	if opts.MaxPooled > 1<<maxClassShift {
		opts.MaxPooled = 1 << maxClassShift
	}
	return &Pool{opts: opts}, nil
}

// classFor returns the size class index for size, or -1 when size is not pooled.
func (p *Pool) classFor(size int) int {
	if size > p.opts.MaxPooled {
		return -1
	}
	shift := minClassShift
	if size > 1<<minClassShift {
		shift = bits.Len(uint(size - 1))
	}
	return shift - minClassShift
}

// Acquire returns a buffer of length size.
func (p *Pool) Acquire(size int) (*ports.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heappool: invalid size %d", size)
	}
	if limit := p.opts.MaxOutstanding; limit > 0 {
		if p.outstanding.Add(1) > int64(limit) {
			p.outstanding.Add(-1)
			p.refused.Add(1)
			return nil, ErrExhausted
		}
	} else {
		p.outstanding.Add(1)
	}

	class := p.classFor(size)
	if class < 0 {
		p.misses.Add(1)
		return ports.NewBuffer(make([]byte, size), p.release(-1)), nil
	}

	if v := p.classes[class].Get(); v != nil {
		p.hits.Add(1)
		data := *(v.(*[]byte))
		return ports.NewBuffer(data[:size], p.release(class)), nil
	}
	p.misses.Add(1)
	data := make([]byte, size, 1<<(class+minClassShift))
	return ports.NewBuffer(data, p.release(class)), nil
}

func (p *Pool) release(class int) func(*ports.Buffer) {
	return func(b *ports.Buffer) {
		p.outstanding.Add(-1)
		if class < 0 {
			return
		}
		data := b.Data[:cap(b.Data)]
		b.Data = nil
		p.classes[class].Put(&data)
	}
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Hits:        p.hits.Load(),
		Misses:      p.misses.Load(),
		Refused:     p.refused.Load(),
		Outstanding: p.outstanding.Load(),
	}
}

var _ ports.BufferPool = (*Pool)(nil)

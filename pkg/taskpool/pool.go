package taskpool

import (
	"errors"
	"fmt"

	"github.com/user/hwenc/pkg/ports"
)

// ErrInvalidPool is returned when a pool cannot be sized.
var ErrInvalidPool = errors.New("taskpool: invalid pool size")

// Pool is a fixed set of Tasks allocated together. All input surfaces live in
// one slab and all bitstream buffers in another; capacities never change for
// the lifetime of the pool.
type Pool struct {
	gen           uint64
	format        ports.VideoFormat
	frameSize     int
	bitstreamSize int

	tasks         []Task
	surfaceSlab   []byte
	bitstreamSlab []byte
}

// New allocates count Tasks with input surfaces for format and bitstream
// buffers of bitstreamSize bytes. gen tags every Task so stale handles from
// an older pool are recognised.
func New(gen uint64, count int, format ports.VideoFormat, bitstreamSize int) (*Pool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d tasks", ErrInvalidPool, count)
	}
	if bitstreamSize <= 0 {
		return nil, fmt.Errorf("%w: bitstream size %d", ErrInvalidPool, bitstreamSize)
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	frameSize := format.FrameSize()
	p := &Pool{
		gen:           gen,
		format:        format,
		frameSize:     frameSize,
		bitstreamSize: bitstreamSize,
		tasks:         make([]Task, count),
		surfaceSlab:   make([]byte, count*frameSize),
		bitstreamSlab: make([]byte, count*bitstreamSize),
	}

	for i := range p.tasks {
		t := &p.tasks[i]
		t.id = i
		t.gen = gen
		t.Surface = ports.Surface{
			Data:  p.surfaceSlab[i*frameSize : (i+1)*frameSize : (i+1)*frameSize],
			Pitch: format.Pitch(),
			Info:  format,
		}
		t.Bitstream = ports.Bitstream{
			Data:      p.bitstreamSlab[i*bitstreamSize : (i+1)*bitstreamSize : (i+1)*bitstreamSize],
			TimeStamp: ports.TimeStampNone,
		}
		t.setState(StateClaimed)
	}

	return p, nil
}

// Size returns the number of Tasks.
func (p *Pool) Size() int {
	return len(p.tasks)
}

// Generation returns the pool generation.
func (p *Pool) Generation() uint64 {
	return p.gen
}

// Format returns the input format the surfaces were sized for.
func (p *Pool) Format() ports.VideoFormat {
	return p.format
}

// FrameSize returns the capacity of each input surface.
func (p *Pool) FrameSize() int {
	return p.frameSize
}

// BitstreamSize returns the capacity of each bitstream buffer.
func (p *Pool) BitstreamSize() int {
	return p.bitstreamSize
}

// Task returns the i-th Task.
func (p *Pool) Task(i int) *Task {
	return &p.tasks[i]
}

// Contains reports whether t belongs to this pool.
func (p *Pool) Contains(t *Task) bool {
	if t == nil || t.gen != p.gen || t.id < 0 || t.id >= len(p.tasks) {
		return false
	}
	return &p.tasks[t.id] == t
}

// FindClaimed returns the claimed Task whose input surface starts at data.
// Tasks in any other state are never matched, so memory owned by a queued or
// in-flight Task is never aliased.
func (p *Pool) FindClaimed(data []byte) *Task {
	for i := range p.tasks {
		t := &p.tasks[i]
		if t.State() == StateClaimed && t.Aliases(data) {
			return t
		}
	}
	return nil
}

// Census counts Tasks per ownership state.
func (p *Pool) Census() map[State]int {
	out := make(map[State]int, 5)
	for i := range p.tasks {
		out[p.tasks[i].State()]++
	}
	return out
}

// Free drops the slabs. The pool must not be used afterwards.
func (p *Pool) Free() {
	p.tasks = nil
	p.surfaceSlab = nil
	p.bitstreamSlab = nil
}

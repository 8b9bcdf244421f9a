// Package taskpool implements the reusable encode tasks of the encoder element
// and the blocking FIFOs they cycle through.
//
// A Task pairs one input surface with one output bitstream buffer and the
// completion handle of its pending encode. Every Task is in exactly one
// ownership State at a time; queue operations perform the transitions.
package taskpool

import (
	"sync/atomic"
	"time"

	"github.com/user/hwenc/pkg/ports"
)

// State is the ownership state of a Task.
type State int32

const (
	// StateIdle means the Task sits in the idle queue.
	StateIdle State = iota
	// StateClaimed means the submission path holds the Task.
	StateClaimed
	// StateInFlight means the Task sits in the exec queue.
	StateInFlight
	// StateCompleting means the completion path holds the Task.
	StateCompleting
	// StateStranded means a fatal submission left the Task outside both
	// queues until the caller recovers it.
	StateStranded
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClaimed:
		return "claimed"
	case StateInFlight:
		return "in-flight"
	case StateCompleting:
		return "completing"
	case StateStranded:
		return "stranded"
	default:
		return "unknown"
	}
}

// Task is one reusable encode unit.
//
// Fields are written only by the role that currently owns the Task, so they
// need no locking of their own.
type Task struct {
	id  int
	gen uint64

	Surface   ports.Surface
	Bitstream ports.Bitstream
	SyncPoint ports.SyncPoint
	// Duration is the presentation duration copied onto the output unit.
	Duration time.Duration

	state atomic.Int32
}

// ID returns the index of the Task within its pool.
func (t *Task) ID() int {
	return t.id
}

// Generation returns the generation of the pool the Task belongs to.
func (t *Task) Generation() uint64 {
	return t.gen
}

// State returns the current ownership state.
func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) setState(s State) {
	t.state.Store(int32(s))
}

// Aliases reports whether data starts at the Task's input surface memory.
func (t *Task) Aliases(data []byte) bool {
	if len(data) == 0 || len(t.Surface.Data) == 0 {
		return false
	}
	return &data[0] == &t.Surface.Data[0]
}

// Owns reports whether data is exactly the Task's input surface.
func (t *Task) Owns(data []byte) bool {
	return len(data) == len(t.Surface.Data) && t.Aliases(data)
}

// Strand marks a claimed Task as held back after a fatal submission.
func (t *Task) Strand() {
	t.setState(StateStranded)
}

// reset clears every transient field so nothing leaks into the next use.
func (t *Task) reset() {
	t.SyncPoint = ports.NoSyncPoint
	t.Duration = 0
	t.Surface.TimeStamp = 0
	t.Bitstream.Reset()
}

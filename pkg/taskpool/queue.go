package taskpool

import (
	"sync"

	"github.com/user/hwenc/pkg/ports"
)

// Queue is a blocking FIFO of Tasks guarded by its own mutex and condition.
//
// Pop blocks while the queue is empty until a Task is pushed or shutdown is
// set. Shutdown is set and signalled under the same mutex the waiters sleep
// on, so a waiter either observes the flag before sleeping or is woken after
// it changes.
type Queue struct {
	name string

	mu       sync.Mutex
	cond     *sync.Cond
	tasks    []*Task
	shutdown bool

	pushState State
	popState  State
	recycle   bool
	needsSync bool
}

// NewIdleQueue returns the queue of Tasks available for new input.
// Pushing a Task resets its transient fields.
func NewIdleQueue() *Queue {
	return newQueue("idle", StateIdle, StateClaimed, true, false)
}

// NewExecQueue returns the queue of submitted Tasks awaiting completion.
// Order is submission order. Pushing a Task without a sync point panics.
func NewExecQueue() *Queue {
	return newQueue("exec", StateInFlight, StateCompleting, false, true)
}

func newQueue(name string, pushState, popState State, recycle, needsSync bool) *Queue {
	q := &Queue{
		name:      name,
		pushState: pushState,
		popState:  popState,
		recycle:   recycle,
		needsSync: needsSync,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Name returns the queue name used in logs.
func (q *Queue) Name() string {
	return q.name
}

// Push appends t to the tail and wakes one waiter.
func (q *Queue) Push(t *Task) {
	if q.needsSync && t.SyncPoint == ports.NoSyncPoint {
		panic("taskpool: task pushed to " + q.name + " queue without a sync point")
	}

	q.mu.Lock()
	if q.recycle {
		t.reset()
	}
	t.setState(q.pushState)
	q.tasks = append(q.tasks, t)
	q.cond.Signal()
	q.mu.Unlock()
}

// Pop removes and returns the head, blocking while the queue is empty.
// It returns nil once shutdown is set and the queue is empty.
func (q *Queue) Pop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 && !q.shutdown {
		q.cond.Wait()
	}
	return q.popLocked()
}

// TryPop removes and returns the head without blocking, or nil.
func (q *Queue) TryPop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *Queue) popLocked() *Task {
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	t.setState(q.popState)
	return t
}

// SetShutdown sets or clears the shutdown flag and wakes every waiter.
func (q *Queue) SetShutdown(v bool) {
	q.mu.Lock()
	q.shutdown = v
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Shutdown reports whether the shutdown flag is set.
func (q *Queue) Shutdown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shutdown
}

// Len returns the number of queued Tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Clear drops every queued Task and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.tasks)
	q.tasks = nil
	return n
}

// Snapshot returns the queued Tasks head first.
func (q *Queue) Snapshot() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}

package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/hwenc/pkg/pipeline"
	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/taskpool"
)

// Result is the outcome of a submission.
type Result int

const (
	// ResultQueued means the frame was submitted and its task awaits completion.
	ResultQueued Result = iota
	// ResultMoreData means the session accepted the frame but needs more input
	// before it produces a unit.
	ResultMoreData
	// ResultRetry means shutdown interrupted the submission. The frame was not
	// consumed and may be submitted again once the element is restarted. A
	// frame rendered into an element buffer keeps that buffer until then.
	ResultRetry
	// ResultFatal means the element cannot make progress until Recover or a
	// new negotiation.
	ResultFatal
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case ResultQueued:
		return "queued"
	case ResultMoreData:
		return "more-data"
	case ResultRetry:
		return "retry"
	case ResultFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AcquireInputBuffer claims an idle task and hands out its input surface so
// the caller can render a frame in place. It blocks while every task is busy,
// without holding the submission lock.
func (e *Element) AcquireInputBuffer() (pipeline.Frame, error) {
	for {
		e.mu.Lock()
		negotiated := e.pool != nil
		active := e.active.Load()
		e.mu.Unlock()

		if !negotiated {
			return pipeline.Frame{}, ErrNotNegotiated
		}
		if !active {
			return pipeline.Frame{}, ErrNotStarted
		}

		t := e.idle.Pop()
		if t == nil {
			return pipeline.Frame{}, ErrFlushing
		}

		e.mu.Lock()
		if e.pool != nil && e.pool.Contains(t) {
			e.lastHanded = t
			e.mu.Unlock()
			return pipeline.Frame{Data: t.Surface.Data, Task: t}, nil
		}
		// Popped from a pool that a reconfiguration has since freed.
		e.mu.Unlock()
	}
}

// ReleaseInputBuffer returns a buffer from AcquireInputBuffer without
// submitting it.
func (e *Element) ReleaseInputBuffer(frame pipeline.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := frame.Task
	if e.pool == nil || !e.pool.Contains(t) || t.State() != taskpool.StateClaimed {
		return
	}
	if e.lastHanded == t {
		e.lastHanded = nil
	}
	e.idle.Push(t)
}

// SubmitFrame hands one frame to the session. Busy answers are retried
// after a pause until the session accepts, ctx is done, or the element is
// stopped.
func (e *Element) SubmitFrame(ctx context.Context, frame pipeline.Frame) (Result, error) {
	if err := e.flowError(); err != nil {
		return ResultFatal, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fatalErr != nil {
		return ResultFatal, e.fatalErr
	}
	if e.pool == nil {
		return ResultFatal, ErrNotNegotiated
	}
	if !e.active.Load() {
		return ResultFatal, ErrNotStarted
	}

	t, owned, err := e.taskForFrame(frame)
	if err != nil {
		if errors.Is(err, ErrFlushing) {
			return ResultRetry, err
		}
		return ResultFatal, err
	}

	t.Surface.TimeStamp = frame.PTS
	t.Duration = frame.Duration
	e.lastPTS = frame.PTS
	e.lastDur = frame.Duration

	e.stats.submitted.Add(1)
	return e.submitTask(ctx, t, &t.Surface, owned)
}

// taskForFrame picks the task that receives frame and reports whether the
// caller handed that task out of AcquireInputBuffer. Memory owned by the
// element is used in place; anything else is copied into a fresh task.
func (e *Element) taskForFrame(frame pipeline.Frame) (*taskpool.Task, bool, error) {
	if t := e.inPlaceTask(frame); t != nil {
		if !t.Owns(frame.Data) {
			// Packed planes written into the start of the surface.
			if err := copyFrame(e.format, t.Surface.Data, bytes.Clone(frame.Data)); err != nil {
				return nil, false, err
			}
			e.stats.copied.Add(1)
		} else {
			e.stats.zeroCopy.Add(1)
		}
		if e.lastHanded == t {
			e.lastHanded = nil
		}
		return t, true, nil
	}

	t := e.idle.Pop()
	if t == nil {
		return nil, false, ErrFlushing
	}
	if err := copyFrame(e.format, t.Surface.Data, frame.Data); err != nil {
		e.idle.Push(t)
		return nil, false, err
	}
	e.stats.copied.Add(1)
	return t, false, nil
}

// inPlaceTask returns the claimed task whose surface frame.Data starts at.
func (e *Element) inPlaceTask(frame pipeline.Frame) *taskpool.Task {
	// The explicit handle wins when it still belongs to this pool.
	if t := frame.Task; t != nil && e.pool.Contains(t) && t.State() == taskpool.StateClaimed && t.Aliases(frame.Data) {
		return t
	}
	if t := e.lastHanded; t != nil && t.State() == taskpool.StateClaimed && t.Aliases(frame.Data) {
		return t
	}
	return e.pool.FindClaimed(frame.Data)
}

// release gives t back after an interrupted submission. A task the caller
// got from AcquireInputBuffer stays claimed so the frame can be resubmitted.
func (e *Element) release(t *taskpool.Task, owned bool) {
	if owned {
		e.lastHanded = t
		return
	}
	e.idle.Push(t)
}

// submitTask submits t until the session accepts it, asks for more data or
// fails. surface is nil for a flush. owned reports whether the caller holds
// the surface memory of t.
func (e *Element) submitTask(ctx context.Context, t *taskpool.Task, surface *ports.Surface, owned bool) (Result, error) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		sp, status := e.session.Submit(surface, &t.Bitstream)

		switch {
		case status.IsError():
			return ResultFatal, e.strand(t, status)

		case sp != ports.NoSyncPoint:
			t.SyncPoint = sp
			e.exec.Push(t)
			e.stats.queued.Add(1)
			e.log.Debug("Task %d submitted (sync point %d)", t.ID(), sp)
			return ResultQueued, nil

		case status.IsWarning():
			if !e.active.Load() {
				e.release(t, owned)
				return ResultRetry, ErrFlushing
			}
			e.stats.busyRetries.Add(1)
			e.log.Debug("Device busy, retrying task %d", t.ID())

			if timer == nil {
				timer = time.NewTimer(e.cfg.BusyRetryDelay)
			} else {
				timer.Reset(e.cfg.BusyRetryDelay)
			}
			select {
			case <-ctx.Done():
				e.release(t, owned)
				return ResultRetry, ctx.Err()
			case <-timer.C:
			}

		default:
			e.idle.Push(t)
			e.stats.moreData.Add(1)
			return ResultMoreData, nil
		}
	}
}

// strand holds t out of both queues and latches the failure.
func (e *Element) strand(t *taskpool.Task, status ports.Status) error {
	t.Strand()
	e.stranded = append(e.stranded, t)
	e.stats.stranded.Store(int64(len(e.stranded)))

	err := fmt.Errorf("%w: %w", ErrSubmitFailed, status.Err())
	e.fatalErr = err
	e.log.Error("Submission of task %d failed: %s", t.ID(), status)
	return err
}

// Recover returns every task stranded by a fatal submission to the idle
// queue and clears latched errors. It returns the number of tasks recovered.
func (e *Element) Recover() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, t := range e.stranded {
		if e.pool != nil && e.pool.Contains(t) {
			e.idle.Push(t)
			n++
		}
	}
	e.stranded = nil
	e.stats.stranded.Store(0)
	e.fatalErr = nil

	e.flowMu.Lock()
	e.flowErr = nil
	e.flowMu.Unlock()

	if n > 0 {
		e.log.Info("Recovered %d stranded tasks", n)
	}
	return n
}

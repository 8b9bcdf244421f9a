package encoder

import (
	"fmt"

	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/taskpool"
)

// run is the completion worker. It forwards tasks in exec queue order and
// returns once shutdown is set and the queue is empty.
func (e *Element) run() {
	defer e.wg.Done()

	for {
		t := e.exec.Pop()
		if t == nil {
			if e.exec.Shutdown() {
				return
			}
			continue
		}
		e.completeTask(t)
	}
}

// completeTask waits for t, forwards its unit and recycles it. A failed unit
// is dropped but the task is still recycled.
func (e *Element) completeTask(t *taskpool.Task) {
	status := e.waitTask(t)
	if status.IsError() {
		e.stats.failed.Add(1)
		e.log.Warn("Encode unit of task %d failed: %s", t.ID(), status)
	} else {
		e.forward(t)
	}
	e.idle.Push(t)
}

// waitTask blocks until the session stops reporting the operation as pending.
func (e *Element) waitTask(t *taskpool.Task) ports.Status {
	for {
		status := e.session.Sync(t.SyncPoint, e.cfg.MaxSyncWait)
		if !status.IsWarning() {
			return status
		}
	}
}

// forward copies the unit of t into an output buffer and pushes it
// downstream. Push failures are latched for the submission caller.
func (e *Element) forward(t *taskpool.Task) {
	payload := t.Bitstream.Bytes()
	if len(payload) == 0 {
		e.stats.empty.Add(1)
		return
	}

	buf := e.outputBuffer(len(payload))
	defer buf.Release()
	n := copy(buf.Data, payload)

	offset := ports.OffsetNone
	if t.Bitstream.Offset != 0 {
		offset = int64(t.Bitstream.Offset)
	}

	// Sessions that hold frames back report the time of the frame encoded.
	pts := t.Bitstream.TimeStamp
	if pts == ports.TimeStampNone {
		pts = t.Surface.TimeStamp
	}

	unit := ports.EncodedUnit{
		Data:     buf.Data[:n],
		Offset:   offset,
		PTS:      pts,
		Duration: t.Duration,
		Keyframe: t.Bitstream.FrameType.Keyframe(),
	}
	if err := e.sink.PushUnit(unit); err != nil {
		e.log.Error("Failed to push unit of task %d: %s", t.ID(), err)
		e.setFlowErr(fmt.Errorf("push unit: %w", err))
		return
	}

	e.stats.completed.Add(1)
	e.stats.bytes.Add(int64(n))
	e.log.Debug("Task %d completed: %d bytes", t.ID(), n)
}

// outputBuffer acquires size bytes from the downstream pool, falling back to a
// local allocation.
func (e *Element) outputBuffer(size int) *ports.Buffer {
	if e.buffers != nil {
		buf, err := e.buffers.Acquire(size)
		if err == nil && len(buf.Data) >= size {
			return buf
		}
		if err == nil {
			buf.Release()
		}
		e.log.Debug("Downstream pool refused %d bytes, allocating locally", size)
	}
	e.stats.localAllocs.Add(1)
	return ports.NewBuffer(make([]byte, size), nil)
}

// drainLocked completes every task left in the exec queue on the calling
// goroutine. The worker must not be running.
func (e *Element) drainLocked() int {
	n := 0
	for t := e.exec.TryPop(); t != nil; t = e.exec.TryPop() {
		e.completeTask(t)
		n++
	}
	if n > 0 {
		e.log.Info("Drained %d in-flight tasks", n)
	}
	return n
}

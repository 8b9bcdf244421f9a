package encoder

import (
	"context"
	"fmt"

	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/taskpool"
)

// SetFormat negotiates a new input format. Every in-flight task is drained
// first, then the session is reopened and a new task pool is published. On
// failure no pool is published and SubmitFrame reports ErrNotNegotiated.
func (e *Element) SetFormat(format ports.VideoFormat) error {
	if err := format.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopWorker() {
		defer e.restartWorker()
	}
	e.drainLocked()

	if e.sessionOpen {
		if err := e.session.Close(); err != nil {
			e.log.Warn("Failed to close session: %s", err)
		}
		e.sessionOpen = false
	}

	params := e.cfg.SessionParams(format)
	if err := e.session.Init(params); err != nil {
		e.discardPoolLocked()
		e.log.Error("Failed to open session for %s: %s", format, err)
		return fmt.Errorf("%w: %w", ErrSessionInit, err)
	}
	e.sessionOpen = true

	pool, err := e.allocatePool(format, params)
	if err != nil {
		if cerr := e.session.Close(); cerr != nil {
			e.log.Warn("Failed to close session: %s", cerr)
		}
		e.sessionOpen = false
		e.discardPoolLocked()
		e.log.Error("Failed to size task pool for %s: %s", format, err)
		return err
	}

	e.discardPoolLocked()
	e.pool = pool
	e.format = format
	for i := 0; i < pool.Size(); i++ {
		e.idle.Push(pool.Task(i))
	}
	e.stats.poolSize.Store(int64(pool.Size()))

	e.log.Info("Negotiated %s with %d tasks (bitstream %d bytes)", format, pool.Size(), pool.BitstreamSize())
	return nil
}

func (e *Element) allocatePool(format ports.VideoFormat, params ports.SessionParams) (*taskpool.Pool, error) {
	req, err := e.session.QueryPoolSize(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolQuery, err)
	}
	if req.SuggestedSurfaces <= 0 || req.BitstreamSize <= 0 {
		return nil, fmt.Errorf("%w: %d surfaces of %d bytes", ErrPoolQuery, req.SuggestedSurfaces, req.BitstreamSize)
	}

	pool, err := taskpool.New(e.gen.Add(1), req.SuggestedSurfaces+e.cfg.ExtraTasks, format, req.BitstreamSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolQuery, err)
	}
	return pool, nil
}

// discardPoolLocked clears both queues and frees the current pool. Stranded
// tasks and latched submission errors go with it.
func (e *Element) discardPoolLocked() {
	e.idle.Clear()
	if n := e.exec.Clear(); n > 0 {
		e.log.Warn("Dropped %d tasks left in exec queue", n)
	}
	e.lastHanded = nil
	e.stranded = nil
	e.fatalErr = nil
	e.stats.stranded.Store(0)
	e.stats.poolSize.Store(0)

	if e.pool != nil {
		e.pool.Free()
		e.pool = nil
	}
}

// Finish asks the session for every unit it still holds back and waits until
// all of them were forwarded. The element keeps running afterwards.
func (e *Element) Finish(ctx context.Context) error {
	if err := e.flowError(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fatalErr != nil {
		return e.fatalErr
	}
	if e.pool == nil {
		return ErrNotNegotiated
	}
	if !e.active.Load() {
		return ErrNotStarted
	}

	flushed := 0
	for {
		t := e.idle.Pop()
		if t == nil {
			return ErrFlushing
		}
		e.lastPTS += e.lastDur
		t.Surface.TimeStamp = e.lastPTS
		t.Duration = e.lastDur

		res, err := e.submitTask(ctx, t, nil, false)
		if err != nil {
			return err
		}
		if res != ResultQueued {
			break
		}
		flushed++
	}

	if e.stopWorker() {
		defer e.restartWorker()
	}
	e.drainLocked()

	e.log.Info("Flushed %d delayed units", flushed)
	return e.flowError()
}

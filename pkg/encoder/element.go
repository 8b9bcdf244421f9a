// Package encoder implements the encoder element: a bounded pool of encode
// tasks fed by the submission path and drained in submission order by a
// background completion worker.
//
// Tasks cycle idle queue -> submission -> exec queue -> completion -> idle
// queue. The submission path runs on the caller's goroutine (SubmitFrame,
// AcquireInputBuffer, SetFormat, Finish, Recover, Close); the completion
// worker runs between Start and Stop. No other goroutine touches the queues.
package encoder

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/user/hwenc/pkg/ports"
	"github.com/user/hwenc/pkg/taskpool"
)

// Element is a hardware encoder element.
type Element struct {
	id      string
	cfg     Config
	session ports.EncodeSession
	sink    ports.UnitSink
	buffers ports.BufferPool
	log     ports.Logger

	idle *taskpool.Queue
	exec *taskpool.Queue

	// mu serialises the submission role.
	mu          sync.Mutex
	pool        *taskpool.Pool
	format      ports.VideoFormat
	sessionOpen bool
	lastHanded  *taskpool.Task
	stranded    []*taskpool.Task
	fatalErr    error
	lastPTS     time.Duration
	lastDur     time.Duration

	// runMu guards worker start and stop.
	runMu   sync.Mutex
	running bool
	active  atomic.Bool
	wg      sync.WaitGroup

	flowMu  sync.Mutex
	flowErr error

	gen   atomic.Uint64
	stats counters
}

// New creates an Element. buffers may be nil, in which case every output
// unit is allocated locally.
func New(cfg Config, session ports.EncodeSession, sink ports.UnitSink, buffers ports.BufferPool, log ports.Logger) (*Element, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if session == nil || sink == nil {
		return nil, errors.New("encoder: session and sink are required")
	}

	id := uuid.NewString()
	e := &Element{
		id:      id,
		cfg:     cfg,
		session: session,
		sink:    sink,
		buffers: buffers,
		log:     log.WithComponent(fmt.Sprintf("encoder %s", id[:8])),
		idle:    taskpool.NewIdleQueue(),
		exec:    taskpool.NewExecQueue(),
	}

	// Waits never block until the output side is started.
	e.idle.SetShutdown(true)
	e.exec.SetShutdown(true)

	return e, nil
}

// ID returns the unique element id used in logs.
func (e *Element) ID() string {
	return e.id
}

// Start activates the output side and launches the completion worker.
// Calling Start on a running element is a no-op.
func (e *Element) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return
	}
	e.startLocked()
	e.log.Info("Completion worker started")
}

func (e *Element) startLocked() {
	e.idle.SetShutdown(false)
	e.exec.SetShutdown(false)
	e.active.Store(true)
	e.running = true
	e.wg.Add(1)
	go e.run()
}

// Stop deactivates the output side. It sets the shutdown flag, wakes every
// blocked queue wait, and joins the worker once it has forwarded every task
// still in the exec queue.
func (e *Element) Stop() {
	if e.stopWorker() {
		e.log.Info("Completion worker stopped")
	}
}

// stopWorker stops the worker and reports whether it was running.
func (e *Element) stopWorker() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return false
	}
	e.active.Store(false)
	e.exec.SetShutdown(true)
	e.idle.SetShutdown(true)
	e.wg.Wait()
	e.running = false
	return true
}

func (e *Element) restartWorker() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		e.startLocked()
	}
}

// Running reports whether the completion worker is active.
func (e *Element) Running() bool {
	return e.active.Load()
}

// Format returns the negotiated input format.
func (e *Element) Format() ports.VideoFormat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.format
}

// Census counts the current pool's tasks per ownership state. It returns
// nil before negotiation.
func (e *Element) Census() map[taskpool.State]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pool == nil {
		return nil
	}
	return e.pool.Census()
}

// Close stops the worker, drains every in-flight task, closes the session
// and frees the pool.
func (e *Element) Close() error {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.drainLocked()
	e.discardPoolLocked()

	var err error
	if e.sessionOpen {
		err = e.session.Close()
		e.sessionOpen = false
	}
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func (e *Element) setFlowErr(err error) {
	e.flowMu.Lock()
	if e.flowErr == nil {
		e.flowErr = err
	}
	e.flowMu.Unlock()
}

func (e *Element) flowError() error {
	e.flowMu.Lock()
	defer e.flowMu.Unlock()
	return e.flowErr
}

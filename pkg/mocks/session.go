package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/user/hwenc/pkg/ports"
)

// EncodeSession is a scriptable mock implementation of ports.EncodeSession.
// Without hooks every submission completes immediately with a unit whose
// payload names the surface timestamp. The unit itself reports no timestamp.
type EncodeSession struct {
	mu sync.Mutex

	InitFunc   func(params ports.SessionParams) error
	CloseFunc  func() error
	QueryFunc  func(params ports.SessionParams) (ports.PoolRequest, error)
	SubmitFunc func(in *ports.Surface, out *ports.Bitstream) (ports.SyncPoint, ports.Status)
	SyncFunc   func(sp ports.SyncPoint, wait time.Duration) ports.Status

	// Pool is returned by QueryPoolSize when QueryFunc is nil.
	Pool ports.PoolRequest

	// Recorded calls for verification
	InitCalls   []ports.SessionParams
	CloseCalls  int
	SubmitCalls []SubmitCall
	SyncCalls   []ports.SyncPoint

	next ports.SyncPoint
}

// SubmitCall records a call to Submit.
type SubmitCall struct {
	Flush     bool
	Data      []byte
	TimeStamp time.Duration
	At        time.Time
}

// NewEncodeSession creates a mock session suggesting surfaces tasks.
func NewEncodeSession(surfaces int) *EncodeSession {
	return &EncodeSession{
		Pool: ports.PoolRequest{SuggestedSurfaces: surfaces, BitstreamSize: 1024},
	}
}

func (m *EncodeSession) Init(params ports.SessionParams) error {
	m.mu.Lock()
	m.InitCalls = append(m.InitCalls, params)
	m.mu.Unlock()
	if m.InitFunc != nil {
		return m.InitFunc(params)
	}
	return nil
}

func (m *EncodeSession) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *EncodeSession) QueryPoolSize(params ports.SessionParams) (ports.PoolRequest, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(params)
	}
	return m.Pool, nil
}

func (m *EncodeSession) Submit(in *ports.Surface, out *ports.Bitstream) (ports.SyncPoint, ports.Status) {
	call := SubmitCall{Flush: in == nil, At: time.Now()}
	if in != nil {
		call.Data = in.Data
		call.TimeStamp = in.TimeStamp
	}
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, call)
	m.mu.Unlock()

	if m.SubmitFunc != nil {
		return m.SubmitFunc(in, out)
	}
	if in == nil {
		return ports.NoSyncPoint, ports.StatusMoreData
	}
	FillUnit(out, UnitPayload(in.TimeStamp), ports.FrameTypeIDR)
	return m.NextSyncPoint(), ports.StatusOK
}

func (m *EncodeSession) Sync(sp ports.SyncPoint, wait time.Duration) ports.Status {
	m.mu.Lock()
	m.SyncCalls = append(m.SyncCalls, sp)
	m.mu.Unlock()
	if m.SyncFunc != nil {
		return m.SyncFunc(sp, wait)
	}
	return ports.StatusOK
}

// NextSyncPoint allocates a fresh non-null sync point.
func (m *EncodeSession) NextSyncPoint() ports.SyncPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.next
}

// Submits returns a copy of the recorded submissions.
func (m *EncodeSession) Submits() []SubmitCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SubmitCall, len(m.SubmitCalls))
	copy(out, m.SubmitCalls)
	return out
}

// UnitPayload is the payload the default Submit writes for a surface.
func UnitPayload(ts time.Duration) []byte {
	return []byte(fmt.Sprintf("unit@%d", ts.Milliseconds()))
}

// FillUnit writes payload into out the way a session reports a finished unit.
func FillUnit(out *ports.Bitstream, payload []byte, ft ports.FrameType) {
	out.DataOffset = 0
	out.DataLength = copy(out.Data, payload)
	out.FrameType = ft
}

var _ ports.EncodeSession = (*EncodeSession)(nil)

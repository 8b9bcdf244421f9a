package mocks

import (
	"sync"
	"time"

	"github.com/user/hwenc/pkg/ports"
)

// UnitSink is a mock implementation of ports.UnitSink that records every unit.
type UnitSink struct {
	mu    sync.Mutex
	units []ports.EncodedUnit

	PushUnitFunc func(unit ports.EncodedUnit) error
}

// NewUnitSink creates a new recording UnitSink.
func NewUnitSink() *UnitSink {
	return &UnitSink{}
}

func (m *UnitSink) PushUnit(unit ports.EncodedUnit) error {
	if m.PushUnitFunc != nil {
		if err := m.PushUnitFunc(unit); err != nil {
			return err
		}
	}
	unit.Data = append([]byte(nil), unit.Data...)
	m.mu.Lock()
	m.units = append(m.units, unit)
	m.mu.Unlock()
	return nil
}

// Units returns the recorded units in push order.
func (m *UnitSink) Units() []ports.EncodedUnit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.EncodedUnit, len(m.units))
	copy(out, m.units)
	return out
}

// Len returns the number of recorded units.
func (m *UnitSink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.units)
}

// WaitFor polls until at least n units arrived or timeout elapses.
func (m *UnitSink) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for m.Len() < n {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

var _ ports.UnitSink = (*UnitSink)(nil)

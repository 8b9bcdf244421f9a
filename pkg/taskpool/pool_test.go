package taskpool

import (
	"errors"
	"testing"

	"github.com/user/hwenc/pkg/ports"
)

func TestNew_NoBitstreamTimeStamp(t *testing.T) {
	p := newTestPool(t, 2)
	for i := 0; i < p.Size(); i++ {
		if ts := p.Task(i).Bitstream.TimeStamp; ts != ports.TimeStampNone {
			t.Errorf("task %d starts with timestamp %s", i, ts)
		}
	}
}

func TestNew_SizesBuffers(t *testing.T) {
	format := ports.VideoFormat{Width: 100, Height: 50, Pixel: ports.PixelNV12, FPSNum: 25, FPSDen: 1}
	p, err := New(3, 4, format, 2048)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// 112x64 aligned, 4:2:0
	wantFrame := 112 * 64 * 3 / 2
	if p.FrameSize() != wantFrame {
		t.Errorf("expected frame size %d, got %d", wantFrame, p.FrameSize())
	}
	if p.Size() != 4 || p.Generation() != 3 {
		t.Errorf("unexpected size %d / generation %d", p.Size(), p.Generation())
	}

	for i := 0; i < p.Size(); i++ {
		task := p.Task(i)
		if len(task.Surface.Data) != wantFrame || cap(task.Surface.Data) != wantFrame {
			t.Errorf("task %d: surface len %d cap %d", i, len(task.Surface.Data), cap(task.Surface.Data))
		}
		if len(task.Bitstream.Data) != 2048 {
			t.Errorf("task %d: bitstream len %d", i, len(task.Bitstream.Data))
		}
		if task.Surface.Pitch != 112 {
			t.Errorf("task %d: pitch %d", i, task.Surface.Pitch)
		}
		if task.ID() != i || task.Generation() != 3 {
			t.Errorf("task %d: id %d generation %d", i, task.ID(), task.Generation())
		}
	}

	// Surfaces are adjacent in one slab and never overlap.
	if &p.Task(1).Surface.Data[0] != &p.surfaceSlab[wantFrame] {
		t.Error("expected surfaces to be carved from one slab")
	}
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(1, 0, testFormat(), 1024); !errors.Is(err, ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool for zero tasks, got %v", err)
	}
	if _, err := New(1, 2, testFormat(), 0); !errors.Is(err, ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool for zero bitstream, got %v", err)
	}
	bad := ports.VideoFormat{Width: 0, Height: 10, Pixel: ports.PixelNV12}
	if _, err := New(1, 2, bad, 1024); !errors.Is(err, ports.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestPool_FindClaimedIgnoresQueued(t *testing.T) {
	p := newTestPool(t, 2)
	idle := NewIdleQueue()
	idle.Push(p.Task(0))
	idle.Push(p.Task(1))

	claimed := idle.Pop()

	if got := p.FindClaimed(claimed.Surface.Data); got != claimed {
		t.Errorf("expected claimed task, got %v", got)
	}
	if got := p.FindClaimed(p.Task(1).Surface.Data); got != nil {
		t.Errorf("expected idle task to be ignored, got task %d", got.ID())
	}
	if got := p.FindClaimed(make([]byte, 16)); got != nil {
		t.Error("expected foreign memory to match nothing")
	}
	if got := p.FindClaimed(nil); got != nil {
		t.Error("expected empty slice to match nothing")
	}
}

func TestTask_OwnsWholeSurfaceOnly(t *testing.T) {
	p := newTestPool(t, 1)
	task := p.Task(0)
	data := task.Surface.Data

	if !task.Owns(data) || !task.Aliases(data) {
		t.Error("expected the full surface to be owned")
	}
	if task.Owns(data[:len(data)/2]) {
		t.Error("expected a shortened surface not to be owned")
	}
	if !task.Aliases(data[:len(data)/2]) {
		t.Error("expected a shortened surface to alias the task")
	}
	if task.Aliases(data[1:]) {
		t.Error("expected an offset slice not to alias the task")
	}
	if got := p.FindClaimed(data[:8]); got != task {
		t.Errorf("expected claimed task for a shortened surface, got %v", got)
	}
}

func TestPool_ContainsRejectsOtherGeneration(t *testing.T) {
	oldPool := newTestPool(t, 2)
	newPool, err := New(2, 2, testFormat(), 1024)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !newPool.Contains(newPool.Task(1)) {
		t.Error("expected own task to be contained")
	}
	if newPool.Contains(oldPool.Task(1)) {
		t.Error("expected task of an older pool to be rejected")
	}
	if newPool.Contains(nil) {
		t.Error("expected nil to be rejected")
	}
}

func TestPool_Census(t *testing.T) {
	p := newTestPool(t, 4)
	idle := NewIdleQueue()
	exec := NewExecQueue()

	for i := 0; i < 4; i++ {
		idle.Push(p.Task(i))
	}
	idle.Pop() // stays claimed
	b := idle.Pop()
	b.SyncPoint = 9
	exec.Push(b)
	c := idle.Pop()
	c.Strand()

	census := p.Census()
	want := map[State]int{StateIdle: 1, StateInFlight: 1, StateStranded: 1, StateClaimed: 1}
	for state, n := range want {
		if census[state] != n {
			t.Errorf("state %s: expected %d, got %d", state, n, census[state])
		}
	}
}

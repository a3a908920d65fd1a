package framepool

import (
	"errors"
	"testing"

	"github.com/user/vpetranscode/pkg/ports"
)

func TestPool_AcquireLowestFree(t *testing.T) {
	p := New(3)

	idx, f, err := p.Acquire()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 || f.Slot != 0 {
		t.Fatalf("expected slot 0, got %d (frame slot %d)", idx, f.Slot)
	}

	// Not marked in flight yet, so the same slot is returned again
	idx2, _, _ := p.Acquire()
	if idx2 != 0 {
		t.Errorf("expected slot 0 to still be free, got %d", idx2)
	}

	if err := p.MarkInFlight(0); err != nil {
		t.Fatalf("MarkInFlight failed: %v", err)
	}
	idx3, _, _ := p.Acquire()
	if idx3 != 1 {
		t.Errorf("expected slot 1, got %d", idx3)
	}
}

func TestPool_Exhausted(t *testing.T) {
	p := New(2)
	for i := 0; i < 2; i++ {
		idx, _, err := p.Acquire()
		if err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
		p.MarkInFlight(idx)
	}

	if _, _, err := p.Acquire(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if p.InFlight() != 2 {
		t.Errorf("expected 2 in flight, got %d", p.InFlight())
	}
}

func TestPool_ReleaseByIdentity(t *testing.T) {
	p := New(4)
	_, f0, _ := p.Acquire()
	p.MarkInFlight(0)
	_, f1, _ := p.Acquire()
	p.MarkInFlight(1)

	if err := p.Release(f0); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if p.InFlight() != 1 {
		t.Errorf("expected 1 in flight, got %d", p.InFlight())
	}

	// A copy of the frame is not the same frame
	clone := *f1
	if err := p.Release(&clone); !errors.Is(err, ErrNotInFlight) {
		t.Errorf("expected ErrNotInFlight for copy, got %v", err)
	}

	// Releasing twice fails
	if err := p.Release(f0); !errors.Is(err, ErrNotInFlight) {
		t.Errorf("expected ErrNotInFlight for double release, got %v", err)
	}

	idx, _, _ := p.Acquire()
	if idx != 0 {
		t.Errorf("expected released slot 0 to be reused, got %d", idx)
	}
}

func TestPool_ForeignFrame(t *testing.T) {
	p := New(1)
	if err := p.Release(&ports.Frame{}); !errors.Is(err, ErrNotInFlight) {
		t.Errorf("expected ErrNotInFlight, got %v", err)
	}
}

func TestPool_DefaultDepth(t *testing.T) {
	p := New(0)
	if p.Depth() != DefaultDepth {
		t.Errorf("expected depth %d, got %d", DefaultDepth, p.Depth())
	}
}

func TestPool_MarkInFlightRange(t *testing.T) {
	p := New(1)
	if err := p.MarkInFlight(5); err == nil {
		t.Error("expected error for out of range slot")
	}
	p.MarkInFlight(0)
	p.MarkInFlight(0)
	if p.InFlight() != 1 {
		t.Errorf("marking twice should count once, got %d", p.InFlight())
	}
}

// Package framepool manages the fixed ring of frame slots that are in flight
// between the preprocessor and the encoder.
package framepool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/user/vpetranscode/pkg/ports"
)

// DefaultDepth is the maximum number of frames the encoder may hold at once.
const DefaultDepth = 78

var (
	// ErrExhausted is returned when every slot is in flight.
	ErrExhausted = errors.New("framepool: no free frame slot")

	// ErrNotInFlight is returned when releasing a frame the pool did not hand out.
	ErrNotInFlight = errors.New("framepool: frame not matched")
)

type slot struct {
	inFlight bool
	frame    ports.Frame
}

// Pool is a fixed-size set of reusable frames.
type Pool struct {
	mu    sync.Mutex
	slots []slot
	used  int
}

// New creates a pool with depth slots.
func New(depth int) *Pool {
	if depth <= 0 {
		depth = DefaultDepth
	}
	p := &Pool{slots: make([]slot, depth)}
	for i := range p.slots {
		p.slots[i].frame.Slot = i
	}
	return p
}

// Depth returns the number of slots.
func (p *Pool) Depth() int {
	return len(p.slots)
}

// Acquire returns the lowest free slot index and its frame.
// The slot stays free until MarkInFlight is called, so a failed
// preprocessing step does not leak it.
func (p *Pool) Acquire() (int, *ports.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if !p.slots[i].inFlight {
			return i, &p.slots[i].frame, nil
		}
	}
	return -1, nil, ErrExhausted
}

// MarkInFlight records that slot idx has been handed to the encoder.
func (p *Pool) MarkInFlight(idx int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx < 0 || idx >= len(p.slots) {
		return fmt.Errorf("framepool: slot %d out of range", idx)
	}
	if !p.slots[idx].inFlight {
		p.slots[idx].inFlight = true
		p.used++
	}
	return nil
}

// Release frees the slot owning frame. Frames are matched by identity.
func (p *Pool) Release(frame *ports.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if p.slots[i].inFlight && &p.slots[i].frame == frame {
			p.slots[i].inFlight = false
			p.used--
			return nil
		}
	}
	return fmt.Errorf("%w: %p", ErrNotInFlight, frame)
}

// InFlight returns the number of slots currently held by the encoder.
func (p *Pool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}


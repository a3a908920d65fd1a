// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"github.com/user/vpetranscode/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveConfigJSON does nothing.
func (s *Sink) SaveConfigJSON(data []byte) error {
	return nil
}

// SavePreprocessedFrame does nothing.
func (s *Sink) SavePreprocessedFrame(index int, frame *ports.Frame) error {
	return nil
}

// SaveLatencyCSV does nothing.
func (s *Sink) SaveLatencyCSV(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)

package mocks

import (
	"sync"

	"github.com/user/vpetranscode/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	ConfigJSON []byte
	Frames     map[int][]byte
	LatencyCSV []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Frames:  make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveConfigJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfigJSON = data
	return nil
}

func (m *DebugSink) SavePreprocessedFrame(index int, frame *ports.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var data []byte
	for i := 0; i < 3; i++ {
		data = append(data, frame.Data[i]...)
	}
	m.Frames[index] = data
	return nil
}

func (m *DebugSink) SaveLatencyCSV(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LatencyCSV = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                         { return false }
func (m *NullSink) SaveConfigJSON(data []byte) error                      { return nil }
func (m *NullSink) SavePreprocessedFrame(index int, f *ports.Frame) error { return nil }
func (m *NullSink) SaveLatencyCSV(data []byte) error                      { return nil }

var _ ports.DebugSink = (*NullSink)(nil)

package summarizer

import (
	"time"

	"github.com/google/uuid"
)

// Summary contains all data collected during a transcode run.
type Summary struct {
	// Metadata
	RunID       string
	GeneratedAt time.Time

	Input       InputInfo
	Device      DeviceInfo
	Encoder     EncoderInfo
	Output      OutputInfo
	Performance PerformanceInfo
}

// InputInfo describes the raw input.
type InputInfo struct {
	Path   string
	Width  int
	Height int
	Format string
}

// DeviceInfo describes the transcoder device.
type DeviceInfo struct {
	Path string
	Open bool
}

// EncoderInfo describes the encoder that was used.
type EncoderInfo struct {
	Codec    string
	Backend  string
	Name     string
	Fallback bool
	Preset   string
	BitRate  int
	Params   string
}

// OutputInfo describes the written bitstream.
type OutputInfo struct {
	Path    string
	Packets int
	Bytes   int64
}

// PerformanceInfo contains throughput and latency measurements.
type PerformanceInfo struct {
	FramesIn    int
	FramesOut   int
	Elapsed     time.Duration
	FPS         float64
	MinLatency  time.Duration
	AvgLatency  time.Duration
	MaxLatency  time.Duration
	Interrupted bool
	PoolDepth   int
}

// NewSummary creates a new Summary with a fresh run id and the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithDevice sets device information.
func (b *Builder) WithDevice(path string, open bool) *Builder {
	b.summary.Device = DeviceInfo{
		Path: path,
		Open: open,
	}
	return b
}

// WithEncoder sets encoder information.
func (b *Builder) WithEncoder(encoder EncoderInfo) *Builder {
	b.summary.Encoder = encoder
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(path string, packets int, bytes int64) *Builder {
	b.summary.Output = OutputInfo{
		Path:    path,
		Packets: packets,
		Bytes:   bytes,
	}
	return b
}

// WithPerformance sets throughput and latency.
func (b *Builder) WithPerformance(perf PerformanceInfo) *Builder {
	b.summary.Performance = perf
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

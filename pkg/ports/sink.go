package ports

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveConfigJSON saves the resolved run configuration as JSON.
	SaveConfigJSON(data []byte) error

	// SavePreprocessedFrame saves a preprocessed frame as raw YUV.
	SavePreprocessedFrame(index int, frame *Frame) error

	// SaveLatencyCSV saves per-frame latency measurements as CSV.
	SaveLatencyCSV(data []byte) error
}

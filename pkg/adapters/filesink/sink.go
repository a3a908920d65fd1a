// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/user/vpetranscode/pkg/ports"
)

// DefaultMaxFrames is the number of preprocessed frames kept by default.
const DefaultMaxFrames = 10

// Sink saves debug output to files.
type Sink struct {
	baseDir   string
	fs        ports.FileSystem
	maxFrames int
}

// New creates a new FileSink. Preprocessed frames with an index of
// maxFrames or more are not saved; maxFrames <= 0 selects DefaultMaxFrames.
func New(baseDir string, fs ports.FileSystem, maxFrames int) *Sink {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	return &Sink{
		baseDir:   baseDir,
		fs:        fs,
		maxFrames: maxFrames,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveConfigJSON saves the resolved run configuration as JSON.
func (s *Sink) SaveConfigJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "config.json")
	return s.fs.WriteFile(path, data)
}

// SavePreprocessedFrame saves a preprocessed frame as raw planes.
// The file name carries the geometry and pixel format needed to view it.
func (s *Sink) SavePreprocessedFrame(index int, frame *ports.Frame) error {
	if index >= s.maxFrames {
		return nil
	}
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}

	data := make([]byte, 0, frame.Bytes())
	for i := 0; i < 3; i++ {
		data = append(data, frame.Data[i]...)
	}
	name := fmt.Sprintf("frame-%04d-%dx%d.%s", index, frame.Width, frame.Height, frame.Format)
	return s.fs.WriteFile(filepath.Join(dir, name), data)
}

// SaveLatencyCSV saves per-frame latency measurements.
func (s *Sink) SaveLatencyCSV(data []byte) error {
	path := filepath.Join(s.baseDir, "latency.csv")
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)

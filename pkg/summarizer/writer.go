package summarizer

import (
	"fmt"

	"github.com/user/vpetranscode/pkg/ports"
)

// Writer renders summaries and stores them through a FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a Writer. Parent directories are created by fs.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{
		formatter: formatter,
		fs:        fs,
	}
}

// Write formats summary and stores it at path.
func (w *Writer) Write(path string, summary *Summary) error {
	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

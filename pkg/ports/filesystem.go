package ports

import "io"

// FileSystem abstracts file system operations.
type FileSystem interface {
	// Open opens a file for streaming reads.
	Open(path string) (io.ReadCloser, error)

	// Create creates or truncates a file for streaming writes,
	// creating parent directories as needed.
	Create(path string) (io.WriteCloser, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}

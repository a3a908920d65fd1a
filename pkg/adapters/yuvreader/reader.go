// Package yuvreader reads raw planar YUV frames from a file.
package yuvreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/user/vpetranscode/pkg/ports"
)

// ErrInvalidGeometry is returned for a zero, negative or odd frame size.
var ErrInvalidGeometry = errors.New("yuvreader: invalid frame geometry")

// Reader implements ports.FrameReader over a raw YUV stream.
type Reader struct {
	src    io.ReadCloser
	r      *bufio.Reader
	width  int
	height int
	format ports.PixelFormat
	count  int64
}

// New creates a Reader for frames of the given geometry read from src.
func New(src io.ReadCloser, width, height int, format ports.PixelFormat) (*Reader, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	if _, err := ports.ParsePixelFormat(string(format)); err != nil {
		return nil, err
	}
	return &Reader{
		src:    src,
		r:      bufio.NewReaderSize(src, format.FrameSize(width, height)),
		width:  width,
		height: height,
		format: format,
	}, nil
}

// Open opens path on fs and returns a Reader for it.
func Open(fs ports.FileSystem, path string, width, height int, format ports.PixelFormat) (*Reader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open input file %s: %w", path, err)
	}
	r, err := New(f, width, height, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// ReadFrame reads the next frame into frame.
// A frame truncated by the end of the input counts as end of input.
func (r *Reader) ReadFrame(frame *ports.Frame) error {
	frame.Alloc(r.width, r.height, r.format)

	for i := 0; i < 3; i++ {
		if len(frame.Data[i]) == 0 {
			continue
		}
		if _, err := io.ReadFull(r.r, frame.Data[i]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return io.EOF
			}
			return fmt.Errorf("failed to read plane %d of frame %d: %w", i, r.count, err)
		}
	}

	frame.Pts = r.count
	frame.PktDts = r.count
	frame.KeyFrame = true
	frame.Slot = -1
	r.count++
	return nil
}

// Layout returns the frame geometry.
func (r *Reader) Layout() (int, int, ports.PixelFormat) {
	return r.width, r.height, r.format
}

// Close closes the underlying input.
func (r *Reader) Close() error {
	return r.src.Close()
}

var _ ports.FrameReader = (*Reader)(nil)

package bitstream

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/user/vpetranscode/pkg/ports"
)

// RawWriter writes packets back to back as an elementary stream.
// Every packet is flushed to the underlying writer before WritePacket returns.
type RawWriter struct {
	dst     io.WriteCloser
	w       *bufio.Writer
	written int64
	closed  bool
}

// NewRawWriter creates a RawWriter on dst.
func NewRawWriter(dst io.WriteCloser) *RawWriter {
	return &RawWriter{dst: dst, w: bufio.NewWriter(dst)}
}

// WritePacket writes the packet payload.
func (r *RawWriter) WritePacket(pkt *ports.Packet) error {
	if r.closed {
		return ErrClosed
	}
	n, err := r.w.Write(pkt.Payload())
	r.written += int64(n)
	if err != nil {
		return fmt.Errorf("write packet: %w", err)
	}
	return r.w.Flush()
}

// BytesWritten returns the number of bytes written.
func (r *RawWriter) BytesWritten() int64 {
	return r.written
}

// Close flushes and closes the output.
func (r *RawWriter) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.w.Flush(); err != nil {
		r.dst.Close()
		return err
	}
	return r.dst.Close()
}

// Discard counts packets without storing them.
type Discard struct {
	written int64
}

// NewDiscard creates a Discard writer.
func NewDiscard() *Discard {
	return &Discard{}
}

func (d *Discard) WritePacket(pkt *ports.Packet) error {
	d.written += int64(pkt.Size)
	return nil
}

func (d *Discard) BytesWritten() int64 { return d.written }

func (d *Discard) Close() error { return nil }

// OutputOptions describes the output stream.
type OutputOptions struct {
	Path      string
	Codec     ports.CodecID
	Width     int
	Height    int
	FrameRate ports.Rational
	// BFrames is the encoder's maximum number of consecutive B-frames.
	BFrames int
}

// Open returns a PacketWriter for opts.Path: a Discard writer for an empty
// path, fragmented MP4 for a .mp4 extension and a raw elementary stream
// otherwise.
func Open(fs ports.FileSystem, opts OutputOptions) (ports.PacketWriter, error) {
	if opts.Path == "" {
		return NewDiscard(), nil
	}

	isMP4 := strings.EqualFold(filepath.Ext(opts.Path), ".mp4")
	if isMP4 && opts.Codec != ports.CodecH264 {
		return nil, fmt.Errorf("%w: %s in mp4", ErrUnsupportedContainer, opts.Codec)
	}
	if isMP4 && opts.BFrames > 0 {
		return nil, fmt.Errorf("%w: %d B-frames, use gop_size=1 or a raw output", ErrReorderedFrames, opts.BFrames)
	}

	f, err := fs.Create(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open output file %s: %w", opts.Path, err)
	}

	if isMP4 {
		return NewMP4Writer(f, opts.Width, opts.Height, opts.FrameRate), nil
	}
	return NewRawWriter(f), nil
}

var (
	_ ports.PacketWriter = (*RawWriter)(nil)
	_ ports.PacketWriter = (*Discard)(nil)
	_ ports.PacketWriter = (*MP4Writer)(nil)
)

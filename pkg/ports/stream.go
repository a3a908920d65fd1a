package ports

// FrameReader reads raw frames from an input.
type FrameReader interface {
	// ReadFrame fills frame with the next picture.
	// Returns io.EOF when the input is exhausted.
	ReadFrame(frame *Frame) error

	// Layout returns the geometry of the frames produced.
	Layout() (width, height int, format PixelFormat)

	// Close releases the input.
	Close() error
}

// PacketWriter writes encoded packets to an output.
type PacketWriter interface {
	// WritePacket writes one packet.
	WritePacket(pkt *Packet) error

	// BytesWritten returns the number of payload bytes written so far.
	BytesWritten() int64

	// Close finalizes the output.
	Close() error
}

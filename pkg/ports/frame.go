package ports

import "fmt"

// PixelFormat identifies the memory layout of a raw YUV frame.
type PixelFormat string

const (
	// PixelFormatYUV420P is planar 4:2:0 (Y, U, V planes).
	PixelFormatYUV420P PixelFormat = "yuv420p"
	// PixelFormatNV12 is semi-planar 4:2:0 (Y plane, interleaved UV plane).
	PixelFormatNV12 PixelFormat = "nv12"
)

// ParsePixelFormat parses a pixel format name.
// Only the formats the preprocessor accepts are recognised.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch PixelFormat(s) {
	case PixelFormatYUV420P, PixelFormatNV12:
		return PixelFormat(s), nil
	default:
		return "", fmt.Errorf("%s format currently not supported", s)
	}
}

// PlaneLayout describes the byte size and line size of each plane of a frame.
type PlaneLayout struct {
	Size     [3]int
	Linesize [3]int
}

// Layout returns the plane layout of a width x height frame in format f.
func (f PixelFormat) Layout(width, height int) PlaneLayout {
	var l PlaneLayout
	switch f {
	case PixelFormatNV12:
		l.Linesize = [3]int{width, width, 0}
		l.Size = [3]int{width * height, width * height / 2, 0}
	case PixelFormatYUV420P:
		l.Linesize = [3]int{width, width / 2, width / 2}
		l.Size = [3]int{width * height, width * height / 4, width * height / 4}
	}
	return l
}

// FrameSize returns the total number of bytes of one frame.
func (f PixelFormat) FrameSize(width, height int) int {
	l := f.Layout(width, height)
	return l.Size[0] + l.Size[1] + l.Size[2]
}

// Frame is a raw picture travelling between reader, preprocessor and encoder.
type Frame struct {
	Width    int
	Height   int
	Format   PixelFormat
	Data     [3][]byte
	Linesize [3]int

	Pts      int64
	PktDts   int64
	KeyFrame bool

	// Slot is the index of the in-flight slot owning this frame, -1 if none.
	Slot int
}

// Alloc (re)allocates plane buffers for the given geometry, reusing existing
// capacity when possible.
func (f *Frame) Alloc(width, height int, format PixelFormat) {
	l := format.Layout(width, height)
	f.Width = width
	f.Height = height
	f.Format = format
	f.Linesize = l.Linesize
	for i := 0; i < 3; i++ {
		if l.Size[i] == 0 {
			f.Data[i] = nil
			continue
		}
		if cap(f.Data[i]) >= l.Size[i] {
			f.Data[i] = f.Data[i][:l.Size[i]]
		} else {
			f.Data[i] = make([]byte, l.Size[i])
		}
	}
}

// Bytes returns the total number of plane bytes held by the frame.
func (f *Frame) Bytes() int {
	return len(f.Data[0]) + len(f.Data[1]) + len(f.Data[2])
}

// Packet is one encoded access unit.
type Packet struct {
	Data     []byte
	Size     int
	Pts      int64
	KeyFrame bool
}

// Payload returns the valid bytes of the packet.
func (p *Packet) Payload() []byte {
	return p.Data[:p.Size]
}

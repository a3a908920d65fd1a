package ports

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrAgain is returned by VideoEncoder.PacketSize when no packet is ready yet.
var ErrAgain = errors.New("resource temporarily unavailable")

// CodecID identifies the output codec.
type CodecID int

const (
	CodecH264 CodecID = iota
	CodecHEVC
)

// String returns the short codec name.
func (c CodecID) String() string {
	switch c {
	case CodecHEVC:
		return "hevc"
	default:
		return "h264"
	}
}

// ParseCodecName maps an encoder name (h264enc, hevcenc) to a codec.
// Names are case sensitive.
func ParseCodecName(name string) (CodecID, error) {
	switch name {
	case "h264enc":
		return CodecH264, nil
	case "hevcenc":
		return CodecHEVC, nil
	default:
		return CodecH264, fmt.Errorf("enc codec %s currently not supported", name)
	}
}

// EncParam is a single key/value passed verbatim to the encoder.
type EncParam struct {
	Key   string
	Value string
}

// Rational is a frame rate expressed as numerator/denominator.
type Rational struct {
	Num int
	Den int
}

// Float returns the rational as a float64.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String formats the rational as num/den.
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// EncoderConfig configures the H.264/HEVC encoder.
type EncoderConfig struct {
	Codec CodecID

	Width  int
	Height int
	Format PixelFormat

	FrameRate Rational
	BitRate   int // bits per second, 0 = encoder default
	CRF       int // -1 = unset
	Preset    string
	Profile   string
	Level     string
	ForceIDR  bool
	Params    []EncParam

	// Colour description written into the VUI.
	ColourPrimaries         int
	TransferCharacteristics int
	MatrixCoeffs            int
}

// MaxBFrames returns the number of consecutive B-frames the gop_size encoder
// parameter allows. The last gop_size entry wins.
func (c EncoderConfig) MaxBFrames() int {
	n := 0
	for _, p := range c.Params {
		if p.Key != "gop_size" {
			continue
		}
		if v, err := strconv.Atoi(p.Value); err == nil && v > 0 {
			n = v - 1
		}
	}
	return n
}

// NamedEncoder is implemented by encoders that only settle on an
// implementation in Init.
type NamedEncoder interface {
	// Name returns the implementation in use, or "" before Init.
	Name() string
}

// VideoEncoder abstracts the hardware encoder plugin.
//
// Frames are pushed with PutFrame. Encoded packets are polled with PacketSize
// and fetched with GetPacket. Frames the encoder no longer references are
// handed back through ConsumedFrame so that their buffers can be reused.
type VideoEncoder interface {
	// Init configures the encoder. Called once, before the first PutFrame.
	Init(cfg EncoderConfig) error

	// PutFrame sends a frame to the encoder. A nil frame signals end of stream.
	PutFrame(frame *Frame) error

	// PacketSize returns the size of the next packet.
	// It returns ErrAgain when no packet is ready and io.EOF once the
	// stream has been fully drained after end of stream.
	PacketSize() (int, error)

	// GetPacket copies the next packet into pkt.Data, which must hold at
	// least the size reported by PacketSize.
	GetPacket(pkt *Packet) error

	// ConsumedFrame returns a frame the encoder released, or nil if none.
	ConsumedFrame() (*Frame, error)

	// Close releases the encoder.
	Close() error
}

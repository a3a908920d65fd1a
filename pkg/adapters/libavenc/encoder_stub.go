//go:build !libav

package libavenc

import "github.com/user/vpetranscode/pkg/ports"

// Available reports whether libav support was compiled in.
func Available() bool { return false }

// Encoder is a placeholder that always fails to initialize.
type Encoder struct{}

// New creates an Encoder.
func New(opts Options) *Encoder { return &Encoder{} }

// Name returns the selected libavcodec encoder.
func (e *Encoder) Name() string { return "" }

func (e *Encoder) Init(cfg ports.EncoderConfig) error { return ErrUnavailable }

func (e *Encoder) PutFrame(frame *ports.Frame) error { return ErrNotInitialized }

func (e *Encoder) PacketSize() (int, error) { return 0, ErrNotInitialized }

func (e *Encoder) GetPacket(pkt *ports.Packet) error { return ErrNotInitialized }

func (e *Encoder) ConsumedFrame() (*ports.Frame, error) { return nil, nil }

func (e *Encoder) Close() error { return nil }

var (
	_ ports.VideoEncoder = (*Encoder)(nil)
	_ ports.NamedEncoder = (*Encoder)(nil)
)

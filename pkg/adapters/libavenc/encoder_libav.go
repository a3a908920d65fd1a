//go:build libav

package libavenc

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/asticode/go-astiav"

	"github.com/user/vpetranscode/pkg/ports"
)

const frameAlign = 1

// Available reports whether libav support was compiled in.
func Available() bool { return true }

type queuedPacket struct {
	data []byte
	pts  int64
	key  bool
}

// Encoder implements ports.VideoEncoder with libavcodec.
type Encoder struct {
	opts   Options
	logger ports.Logger

	mu       sync.Mutex
	name     string
	codec    *astiav.Codec
	cc       *astiav.CodecContext
	frame    *astiav.Frame
	pkt      *astiav.Packet
	queue    []queuedPacket
	consumed []*ports.Frame
	eos      bool
	drained  bool
}

// New creates an Encoder.
func New(opts Options) *Encoder {
	return &Encoder{
		opts:   opts,
		logger: opts.Logger.WithComponent("libavenc"),
	}
}

// Name returns the selected libavcodec encoder.
func (e *Encoder) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

func pixelFormat(f ports.PixelFormat) astiav.PixelFormat {
	if f == ports.PixelFormatNV12 {
		return astiav.PixelFormatNv12
	}
	return astiav.PixelFormatYuv420P
}

// Init picks the first available candidate encoder and opens it.
func (e *Encoder) Init(cfg ports.EncoderConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cc != nil {
		return errors.New("libavenc: already initialized")
	}

	for _, name := range e.opts.candidates(cfg.Codec) {
		if c := astiav.FindEncoderByName(name); c != nil {
			e.codec = c
			e.name = name
			break
		}
	}
	if e.codec == nil {
		return fmt.Errorf("%w for %s", ErrEncoderNotFound, cfg.Codec)
	}
	e.logger.Debug("Using libavcodec encoder %s", e.name)

	if e.cc = astiav.AllocCodecContext(e.codec); e.cc == nil {
		return errors.New("libavenc: codec context is nil")
	}

	rate := cfg.FrameRate
	if rate.Num <= 0 || rate.Den <= 0 {
		rate = ports.Rational{Num: 30, Den: 1}
	}
	e.cc.SetWidth(cfg.Width)
	e.cc.SetHeight(cfg.Height)
	e.cc.SetPixelFormat(pixelFormat(cfg.Format))
	e.cc.SetFramerate(astiav.NewRational(rate.Num, rate.Den))
	e.cc.SetTimeBase(astiav.NewRational(rate.Den, rate.Num))
	if cfg.BitRate > 0 && cfg.CRF < 0 {
		e.cc.SetBitRate(int64(cfg.BitRate))
	}

	dict := astiav.NewDictionary()
	defer dict.Free()
	set := func(k, v string) {
		if v != "" {
			dict.Set(k, v, 0)
		}
	}
	set("preset", cfg.Preset)
	set("profile", cfg.Profile)
	set("level", cfg.Level)
	if cfg.CRF >= 0 {
		set("crf", strconv.Itoa(cfg.CRF))
	}
	if cfg.ForceIDR {
		set("forced-idr", "1")
	}
	for _, p := range cfg.Params {
		switch p.Key {
		case "intra_pic_rate":
			if n, err := strconv.Atoi(p.Value); err == nil {
				e.cc.SetGopSize(n)
			}
		case "gop_size":
			if n, err := strconv.Atoi(p.Value); err == nil && n > 0 {
				e.cc.SetMaxBFrames(n - 1)
			}
		default:
			set(p.Key, p.Value)
		}
	}

	if err := e.cc.Open(e.codec, dict); err != nil {
		e.cc.Free()
		e.cc = nil
		return fmt.Errorf("libavenc: opening %s failed: %w", e.name, err)
	}

	e.frame = astiav.AllocFrame()
	e.frame.SetWidth(cfg.Width)
	e.frame.SetHeight(cfg.Height)
	e.frame.SetPixelFormat(pixelFormat(cfg.Format))
	if err := e.frame.AllocBuffer(frameAlign); err != nil {
		return fmt.Errorf("libavenc: allocating frame buffer failed: %w", err)
	}
	e.pkt = astiav.AllocPacket()
	return nil
}

// PutFrame encodes frame. A nil frame flushes the encoder.
func (e *Encoder) PutFrame(frame *ports.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cc == nil {
		return ErrNotInitialized
	}
	if frame == nil {
		if e.eos {
			return nil
		}
		e.eos = true
		if err := e.cc.SendFrame(nil); err != nil {
			return fmt.Errorf("libavenc: flushing failed: %w", err)
		}
		return e.receive()
	}

	if err := e.frame.MakeWritable(); err != nil {
		return fmt.Errorf("libavenc: frame not writable: %w", err)
	}
	buf := make([]byte, 0, frame.Bytes())
	for i := 0; i < 3; i++ {
		buf = append(buf, frame.Data[i]...)
	}
	if err := e.frame.Data().SetBytes(buf, frameAlign); err != nil {
		return fmt.Errorf("libavenc: copying frame %d failed: %w", frame.Pts, err)
	}
	e.frame.SetPts(frame.Pts)

	if err := e.cc.SendFrame(e.frame); err != nil {
		return fmt.Errorf("libavenc: sending frame %d failed: %w", frame.Pts, err)
	}
	e.consumed = append(e.consumed, frame)
	return e.receive()
}

// receive moves every packet libavcodec has ready into the queue.
func (e *Encoder) receive() error {
	for {
		if err := e.cc.ReceivePacket(e.pkt); err != nil {
			if errors.Is(err, astiav.ErrEagain) {
				return nil
			}
			if errors.Is(err, astiav.ErrEof) {
				e.drained = true
				return nil
			}
			return fmt.Errorf("libavenc: receiving packet failed: %w", err)
		}
		data := e.pkt.Data()
		e.queue = append(e.queue, queuedPacket{
			data: append([]byte(nil), data...),
			pts:  e.pkt.Pts(),
			key:  e.pkt.Flags().Has(astiav.PacketFlagKey),
		})
		e.pkt.Unref()
	}
}

// PacketSize returns the size of the next queued packet.
func (e *Encoder) PacketSize() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cc == nil {
		return 0, ErrNotInitialized
	}
	if len(e.queue) > 0 {
		return len(e.queue[0].data), nil
	}
	if e.drained {
		return 0, io.EOF
	}
	return 0, ports.ErrAgain
}

// GetPacket pops the next packet into pkt.
func (e *Encoder) GetPacket(pkt *ports.Packet) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return ports.ErrAgain
	}
	q := e.queue[0]
	if cap(pkt.Data) < len(q.data) {
		return fmt.Errorf("libavenc: packet buffer too small: %d < %d", cap(pkt.Data), len(q.data))
	}
	e.queue = e.queue[1:]
	pkt.Data = pkt.Data[:cap(pkt.Data)]
	pkt.Size = copy(pkt.Data, q.data)
	pkt.Pts = q.pts
	pkt.KeyFrame = q.key
	return nil
}

// ConsumedFrame returns a frame libavcodec has copied, or nil.
func (e *Encoder) ConsumedFrame() (*ports.Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.consumed) == 0 {
		return nil, nil
	}
	f := e.consumed[0]
	e.consumed = e.consumed[1:]
	return f, nil
}

// Close frees the libav objects.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pkt != nil {
		e.pkt.Free()
		e.pkt = nil
	}
	if e.frame != nil {
		e.frame.Free()
		e.frame = nil
	}
	if e.cc != nil {
		e.cc.Free()
		e.cc = nil
	}
	return nil
}

var (
	_ ports.VideoEncoder = (*Encoder)(nil)
	_ ports.NamedEncoder = (*Encoder)(nil)
)

package mocks

import (
	"fmt"
	"io"
	"sync"

	"github.com/user/vpetranscode/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
//
// Every frame produces one packet immediately. The encoder keeps the last
// Delay frames referenced and hands older ones back through ConsumedFrame.
// End of stream releases every held frame.
type VideoEncoder struct {
	mu sync.Mutex

	InitFunc     func(cfg ports.EncoderConfig) error
	PutFrameFunc func(frame *ports.Frame) error
	CloseFunc    func() error

	// PacketSizeFor returns the packet size for a frame; defaults to 100 bytes.
	PacketSizeFor func(pts int64) int
	// Delay is the number of frames held before being consumed.
	Delay int
	// FlushAgain is the number of ErrAgain replies before io.EOF after end of stream.
	FlushAgain int
	// Selected is reported by Name once Init has been called.
	Selected string

	// Recorded calls for verification
	Config      ports.EncoderConfig
	InitCalls   int
	PutPts      []int64
	EOS         bool
	CloseCalled bool

	held     []*ports.Frame
	consumed []*ports.Frame
	packets  []ports.Packet
}

func (m *VideoEncoder) Init(cfg ports.EncoderConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitCalls++
	m.Config = cfg
	if m.InitFunc != nil {
		return m.InitFunc(cfg)
	}
	return nil
}

func (m *VideoEncoder) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InitCalls == 0 {
		return ""
	}
	return m.Selected
}

func (m *VideoEncoder) PutFrame(frame *ports.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutFrameFunc != nil {
		if err := m.PutFrameFunc(frame); err != nil {
			return err
		}
	}
	if frame == nil {
		m.EOS = true
		m.consumed = append(m.consumed, m.held...)
		m.held = nil
		return nil
	}
	if m.EOS {
		return fmt.Errorf("mock encoder: frame after end of stream")
	}

	m.PutPts = append(m.PutPts, frame.Pts)
	size := 100
	if m.PacketSizeFor != nil {
		size = m.PacketSizeFor(frame.Pts)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(frame.Pts)
	}
	m.packets = append(m.packets, ports.Packet{
		Data:     data,
		Size:     size,
		Pts:      frame.Pts,
		KeyFrame: len(m.PutPts) == 1,
	})

	m.held = append(m.held, frame)
	for len(m.held) > m.Delay {
		m.consumed = append(m.consumed, m.held[0])
		m.held = m.held[1:]
	}
	return nil
}

func (m *VideoEncoder) PacketSize() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.packets) > 0 {
		return m.packets[0].Size, nil
	}
	if !m.EOS {
		return 0, ports.ErrAgain
	}
	if m.FlushAgain > 0 {
		m.FlushAgain--
		return 0, ports.ErrAgain
	}
	return 0, io.EOF
}

func (m *VideoEncoder) GetPacket(pkt *ports.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.packets) == 0 {
		return ports.ErrAgain
	}
	p := m.packets[0]
	if cap(pkt.Data) < p.Size {
		return fmt.Errorf("mock encoder: buffer too small: %d < %d", cap(pkt.Data), p.Size)
	}
	m.packets = m.packets[1:]
	pkt.Data = pkt.Data[:cap(pkt.Data)]
	pkt.Size = copy(pkt.Data, p.Data)
	pkt.Pts = p.Pts
	pkt.KeyFrame = p.KeyFrame
	return nil
}

func (m *VideoEncoder) ConsumedFrame() (*ports.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.consumed) == 0 {
		return nil, nil
	}
	f := m.consumed[0]
	m.consumed = m.consumed[1:]
	return f, nil
}

func (m *VideoEncoder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Held returns the number of frames the encoder still references.
func (m *VideoEncoder) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

package mocks

import (
	"io"

	"github.com/user/vpetranscode/pkg/ports"
)

// FrameReader is a mock implementation of ports.FrameReader producing
// Count frames whose bytes all equal the frame index.
type FrameReader struct {
	Width  int
	Height int
	Format ports.PixelFormat
	Count  int

	ReadFunc  func(index int, frame *ports.Frame) error
	CloseFunc func() error

	Read        int
	CloseCalled bool
}

func (m *FrameReader) ReadFrame(frame *ports.Frame) error {
	if m.Read >= m.Count {
		return io.EOF
	}
	if m.ReadFunc != nil {
		if err := m.ReadFunc(m.Read, frame); err != nil {
			return err
		}
	}
	frame.Alloc(m.Width, m.Height, m.Format)
	for i := 0; i < 3; i++ {
		for j := range frame.Data[i] {
			frame.Data[i][j] = byte(m.Read)
		}
	}
	frame.Pts = int64(m.Read)
	frame.PktDts = int64(m.Read)
	frame.KeyFrame = true
	frame.Slot = -1
	m.Read++
	return nil
}

func (m *FrameReader) Layout() (int, int, ports.PixelFormat) {
	return m.Width, m.Height, m.Format
}

func (m *FrameReader) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.FrameReader = (*FrameReader)(nil)

// PacketWriter is a mock implementation of ports.PacketWriter that keeps
// a copy of every packet.
type PacketWriter struct {
	WriteFunc func(pkt *ports.Packet) error
	CloseFunc func() error

	Packets     []ports.Packet
	CloseCalled bool
	written     int64
}

func (m *PacketWriter) WritePacket(pkt *ports.Packet) error {
	if m.WriteFunc != nil {
		if err := m.WriteFunc(pkt); err != nil {
			return err
		}
	}
	data := append([]byte(nil), pkt.Payload()...)
	m.Packets = append(m.Packets, ports.Packet{Data: data, Size: len(data), Pts: pkt.Pts, KeyFrame: pkt.KeyFrame})
	m.written += int64(len(data))
	return nil
}

func (m *PacketWriter) BytesWritten() int64 {
	return m.written
}

func (m *PacketWriter) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.PacketWriter = (*PacketWriter)(nil)

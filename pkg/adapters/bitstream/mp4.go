package bitstream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/user/vpetranscode/pkg/ports"
)

const mp4Timescale = 90000

// MP4Writer writes H.264 packets as a fragmented MP4 file.
// The init segment is written once the first SPS/PPS pair is seen and every
// packet becomes one fragment.
type MP4Writer struct {
	dst    io.WriteCloser
	width  int
	height int
	dur    uint32

	sps, pps []byte
	started  bool
	seq      uint32
	written  int64
	closed   bool
}

// NewMP4Writer creates an MP4Writer on dst.
func NewMP4Writer(dst io.WriteCloser, width, height int, fps ports.Rational) *MP4Writer {
	if fps.Num <= 0 || fps.Den <= 0 {
		fps = ports.Rational{Num: 30, Den: 1}
	}
	return &MP4Writer{
		dst:    dst,
		width:  width,
		height: height,
		dur:    uint32(int64(mp4Timescale) * int64(fps.Den) / int64(fps.Num)),
	}
}

// WritePacket appends one access unit in Annex-B form.
func (m *MP4Writer) WritePacket(pkt *ports.Packet) error {
	if m.closed {
		return ErrClosed
	}

	nalus, err := SplitNALUs(pkt.Payload())
	if err != nil {
		return fmt.Errorf("parse access unit: %w", err)
	}

	var sample [][]byte
	for _, nalu := range nalus {
		switch h264.NALUType(nalu[0] & 0x1F) {
		case h264.NALUTypeSPS:
			if m.sps == nil {
				m.sps = append([]byte(nil), nalu...)
			}
		case h264.NALUTypePPS:
			if m.pps == nil {
				m.pps = append([]byte(nil), nalu...)
			}
		case h264.NALUTypeAccessUnitDelimiter:
			// not stored in samples
		default:
			sample = append(sample, nalu)
		}
	}

	if !m.started {
		if m.sps == nil || m.pps == nil {
			return ErrNoParameterSets
		}
		if err := m.writeInit(); err != nil {
			return err
		}
	}
	if len(sample) == 0 {
		return nil
	}

	avcc := h264.AVCC(sample)
	data, err := avcc.Marshal()
	if err != nil {
		return fmt.Errorf("convert to avcc: %w", err)
	}
	return m.writeFragment(pkt, data)
}

func (m *MP4Writer) writeInit() error {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(mp4Timescale, "video", "und")
	trak := init.Moov.Trak

	avcC, err := mp4.CreateAvcC([][]byte{m.sps}, [][]byte{m.pps}, true)
	if err != nil {
		return fmt.Errorf("create avcC: %w", err)
	}
	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(m.width), uint16(m.height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(m.width << 16)
	trak.Tkhd.Height = mp4.Fixed32(m.height << 16)

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso6", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	if _, err := m.dst.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write init segment: %w", err)
	}
	m.started = true
	return nil
}

func (m *MP4Writer) writeFragment(pkt *ports.Packet, data []byte) error {
	m.seq++
	frag, err := mp4.CreateFragment(m.seq, 1)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}

	flags := mp4.NonSyncSampleFlags
	if pkt.KeyFrame {
		flags = mp4.SyncSampleFlags
	}
	frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags: flags,
			Size:  uint32(len(data)),
			Dur:   m.dur,
		},
		DecodeTime: uint64(pkt.Pts) * uint64(m.dur),
		Data:       data,
	})

	var buf bytes.Buffer
	if err := frag.Encode(&buf); err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}
	if _, err := m.dst.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write fragment: %w", err)
	}
	m.written += int64(len(data))
	return nil
}

// BytesWritten returns the number of sample bytes written.
func (m *MP4Writer) BytesWritten() int64 {
	return m.written
}

// Close closes the output.
func (m *MP4Writer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.dst.Close()
}

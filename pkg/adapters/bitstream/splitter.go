// Package bitstream splits and writes H.264/HEVC elementary streams.
package bitstream

import (
	"bytes"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"

	"github.com/user/vpetranscode/pkg/ports"
)

var startCode = []byte{0, 0, 1}

// AccessUnit is one encoded picture in Annex-B form.
type AccessUnit struct {
	Data     []byte
	KeyFrame bool
}

// Splitter cuts an Annex-B byte stream into access units.
// Input may arrive in arbitrary chunks.
type Splitter struct {
	codec   ports.CodecID
	pending []byte
	nalus   [][]byte
	hasVCL  bool
	key     bool
}

// NewSplitter creates a Splitter for codec.
func NewSplitter(codec ports.CodecID) *Splitter {
	return &Splitter{codec: codec}
}

// Write feeds data to the splitter and returns the access units completed by it.
func (s *Splitter) Write(data []byte) ([]AccessUnit, error) {
	s.pending = append(s.pending, data...)

	first := bytes.Index(s.pending, startCode)
	if first < 0 {
		// Keep a possible partial start code only.
		if len(s.pending) > 2 {
			s.pending = append(s.pending[:0], s.pending[len(s.pending)-2:]...)
		}
		return nil, nil
	}

	var out []AccessUnit
	pos := first + len(startCode)
	for {
		next := bytes.Index(s.pending[pos:], startCode)
		if next < 0 {
			break
		}
		au, err := s.push(s.pending[pos : pos+next])
		if err != nil {
			return out, err
		}
		if au != nil {
			out = append(out, *au)
		}
		pos += next + len(startCode)
	}

	// Keep the incomplete NAL unit including its start code.
	s.pending = append(s.pending[:0:0], s.pending[pos-len(startCode):]...)
	return out, nil
}

// Flush completes the last NAL unit and returns the remaining access units.
func (s *Splitter) Flush() ([]AccessUnit, error) {
	var out []AccessUnit
	if i := bytes.Index(s.pending, startCode); i >= 0 {
		au, err := s.push(s.pending[i+len(startCode):])
		if err != nil {
			s.pending = nil
			return nil, err
		}
		if au != nil {
			out = append(out, *au)
		}
	}
	s.pending = nil

	au, err := s.emit()
	if err != nil {
		return out, err
	}
	if au != nil {
		out = append(out, *au)
	}
	return out, nil
}

// push adds one NAL unit (without start code) and returns the access unit it
// terminated, if any.
func (s *Splitter) push(nalu []byte) (*AccessUnit, error) {
	nalu = bytes.TrimRight(nalu, "\x00")
	if len(nalu) == 0 {
		return nil, nil
	}

	var done *AccessUnit
	if s.hasVCL && s.startsAccessUnit(nalu) {
		au, err := s.emit()
		if err != nil {
			return nil, err
		}
		done = au
	}

	s.nalus = append(s.nalus, append([]byte(nil), nalu...))
	if s.isVCL(nalu) {
		s.hasVCL = true
		if s.isKey(nalu) {
			s.key = true
		}
	}
	return done, nil
}

func (s *Splitter) emit() (*AccessUnit, error) {
	if len(s.nalus) == 0 {
		return nil, nil
	}
	annexB := h264.AnnexB(s.nalus)
	data, err := annexB.Marshal()
	if err != nil {
		return nil, err
	}
	au := &AccessUnit{Data: data, KeyFrame: s.key}
	s.nalus = nil
	s.hasVCL = false
	s.key = false
	return au, nil
}

func (s *Splitter) isVCL(nalu []byte) bool {
	if s.codec == ports.CodecHEVC {
		return hevcType(nalu) < h265.NALUType_VPS_NUT
	}
	t := h264Type(nalu)
	return t >= h264.NALUTypeNonIDR && t <= h264.NALUTypeIDR
}

func (s *Splitter) isKey(nalu []byte) bool {
	if s.codec == ports.CodecHEVC {
		switch hevcType(nalu) {
		case h265.NALUType_BLA_W_LP, h265.NALUType_BLA_W_RADL, h265.NALUType_BLA_N_LP:
			return true
		}
		return h265.IsRandomAccess([][]byte{nalu})
	}
	return h264.IsRandomAccess([][]byte{nalu})
}

// startsAccessUnit reports whether nalu is the first NAL unit of a new picture,
// given that the current access unit already holds a picture.
func (s *Splitter) startsAccessUnit(nalu []byte) bool {
	if s.codec == ports.CodecHEVC {
		switch t := hevcType(nalu); {
		case t < h265.NALUType_VPS_NUT:
			// first_slice_segment_in_pic_flag
			return len(nalu) > 2 && nalu[2]&0x80 != 0
		case t >= h265.NALUType_VPS_NUT && t <= h265.NALUType_AUD_NUT, t == h265.NALUType_PREFIX_SEI_NUT:
			return true
		case t >= hevcReservedPrefix41 && t <= hevcReservedPrefix44:
			return true
		case t >= hevcUnspecified48 && t <= hevcUnspecified55:
			return true
		}
		return false
	}

	switch h264Type(nalu) {
	case h264.NALUTypeNonIDR, h264.NALUTypeIDR:
		// first_mb_in_slice == 0 is coded as a single 1 bit
		return len(nalu) > 1 && nalu[1]&0x80 != 0
	case h264.NALUTypeSEI, h264.NALUTypeSPS, h264.NALUTypePPS,
		h264.NALUTypeAccessUnitDelimiter, h264.NALUTypePrefix, h264.NALUTypeSubsetSPS,
		h264.NALUTypeReserved16, h264.NALUTypeReserved17, h264.NALUTypeReserved18:
		return true
	}
	return false
}

// Reserved and unspecified HEVC types h265 has no names for.
const (
	hevcReservedPrefix41 h265.NALUType = 41
	hevcReservedPrefix44 h265.NALUType = 44
	hevcUnspecified48    h265.NALUType = 48
	hevcUnspecified55    h265.NALUType = 55
)

func hevcType(nalu []byte) h265.NALUType {
	return h265.NALUType((nalu[0] >> 1) & 0x3F)
}

func h264Type(nalu []byte) h264.NALUType {
	return h264.NALUType(nalu[0] & 0x1F)
}

// SplitNALUs parses a complete Annex-B buffer into NAL units.
func SplitNALUs(data []byte) ([][]byte, error) {
	var annexB h264.AnnexB
	if err := annexB.Unmarshal(data); err != nil {
		return nil, err
	}
	return annexB, nil
}

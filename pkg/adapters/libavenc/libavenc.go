// Package libavenc encodes frames in-process through libavcodec.
//
// The implementation needs cgo and the FFmpeg development libraries and is
// only compiled with the "libav" build tag. Without it New returns an encoder
// whose Init fails with ErrUnavailable.
package libavenc

import (
	"errors"

	"github.com/user/vpetranscode/pkg/ports"
)

var (
	// ErrUnavailable is returned when the binary was built without libav support.
	ErrUnavailable = errors.New("libavenc: built without libav support")

	// ErrEncoderNotFound is returned when none of the candidate encoders exists.
	ErrEncoderNotFound = errors.New("libavenc: no suitable encoder found")

	// ErrNotInitialized is returned when encoder methods are called before Init.
	ErrNotInitialized = errors.New("libavenc: encoder not initialized")
)

// Candidates returns the libavcodec encoders tried for codec, in order.
func Candidates(codec ports.CodecID) []string {
	if codec == ports.CodecHEVC {
		return []string{"hevcenc_vpe", "libx265", "hevc"}
	}
	return []string{"h264enc_vpe", "libx264", "h264"}
}

// Options configures an Encoder.
type Options struct {
	Logger ports.Logger
	// Encoders overrides Candidates when not empty.
	Encoders []string
}

func (o Options) candidates(codec ports.CodecID) []string {
	if len(o.Encoders) > 0 {
		return o.Encoders
	}
	return Candidates(codec)
}

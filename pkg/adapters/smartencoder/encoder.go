// Package smartencoder provides a video encoder that automatically selects
// the best available backend with fallback support.
package smartencoder

import (
	"errors"
	"fmt"

	"github.com/user/vpetranscode/pkg/adapters/ffmpegenc"
	"github.com/user/vpetranscode/pkg/adapters/libavenc"
	"github.com/user/vpetranscode/pkg/ports"
)

// Backend represents the encoding backend used.
type Backend string

const (
	// BackendAuto selects the first available backend.
	BackendAuto Backend = "auto"
	// BackendVPE represents the VeriSilicon FFmpeg integration on the transcoder card.
	BackendVPE Backend = "vpe"
	// BackendFFmpeg represents software encoding through an ffmpeg process.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendLibav represents in-process encoding through libavcodec.
	BackendLibav Backend = "libav"
)

// ParseBackend parses a backend name. An empty name means BackendAuto.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendVPE, BackendFFmpeg, BackendLibav:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownBackend, s)
	}
}

// Info contains information about the selected encoder.
type Info struct {
	// Backend is the encoding backend being used.
	Backend Backend
	// Encoder is the encoder name passed to the backend, e.g. h264enc_vpe.
	Encoder string
	// Requested is the backend that was originally requested.
	Requested Backend
	// FallbackUsed indicates that a backend other than VPE was chosen automatically.
	FallbackUsed bool
}

// Options configures the smart encoder behavior.
type Options struct {
	// Backend is the requested backend. Defaults to BackendAuto.
	Backend Backend
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// Device is passed to the VPE backend.
	Device ports.DeviceOptions
	// DeviceOpen reports whether the transcoder device was opened.
	// The VPE backend is only considered when it was.
	DeviceOpen bool
	// Logger is used to log fallback warnings.
	Logger ports.Logger
}

var (
	// ErrNoEncoderAvailable is returned when no encoder is available.
	ErrNoEncoderAvailable = errors.New("smartencoder: no encoder available")
	// ErrUnknownBackend is returned for an unknown backend name.
	ErrUnknownBackend = errors.New("smartencoder: unknown backend")
)

// Lookups are variables so that tests can run without ffmpeg.
var (
	findFFmpeg     = ffmpegenc.FindFFmpeg
	listEncoders   = ffmpegenc.ListEncoders
	libavAvailable = libavenc.Available
)

// New creates a video encoder for codec.
//
// The selection flow for BackendAuto:
//  1. VPE through ffmpeg, when the device is open and ffmpeg lists the VPE encoders
//  2. Software encoding through ffmpeg (libx264 / libx265)
//  3. In-process libavcodec, when built with the libav tag
//
// An explicitly requested backend never falls back.
func New(codec ports.CodecID, opts Options) (ports.VideoEncoder, Info, error) {
	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}
	info := Info{Requested: opts.Backend}

	switch opts.Backend {
	case BackendVPE:
		return selectVPE(codec, opts, info)
	case BackendFFmpeg:
		return selectSoftware(codec, opts, info)
	case BackendLibav:
		return selectLibav(codec, opts, info)
	case BackendAuto:
	default:
		return nil, Info{}, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}

	enc, i, err := selectVPE(codec, opts, info)
	if err == nil {
		return enc, i, nil
	}
	opts.Logger.Warn("VPE encoder not available, falling back to software encoding: %v", err)

	info.FallbackUsed = true
	if enc, i, err := selectSoftware(codec, opts, info); err == nil {
		return enc, i, nil
	}
	if enc, i, err := selectLibav(codec, opts, info); err == nil {
		return enc, i, nil
	}
	return nil, Info{}, fmt.Errorf("%w for %s", ErrNoEncoderAvailable, codec)
}

func selectVPE(codec ports.CodecID, opts Options, info Info) (ports.VideoEncoder, Info, error) {
	if !opts.DeviceOpen {
		return nil, Info{}, fmt.Errorf("%w: device is not open", ErrNoEncoderAvailable)
	}
	path, err := findFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, Info{}, err
	}
	name := ffmpegenc.EncoderName(ffmpegenc.ModeVPE, codec)
	encoders, err := listEncoders(path)
	if err != nil {
		return nil, Info{}, err
	}
	if !encoders[name] {
		return nil, Info{}, fmt.Errorf("%w: ffmpeg has no %s", ErrNoEncoderAvailable, name)
	}

	info.Backend = BackendVPE
	info.Encoder = name
	return ffmpegenc.New(ffmpegenc.Options{
		FFmpegPath: path,
		Mode:       ffmpegenc.ModeVPE,
		Device:     opts.Device,
		Logger:     opts.Logger,
	}), info, nil
}

func selectSoftware(codec ports.CodecID, opts Options, info Info) (ports.VideoEncoder, Info, error) {
	path, err := findFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, Info{}, err
	}
	name := ffmpegenc.EncoderName(ffmpegenc.ModeSoftware, codec)
	// Builds without -encoders support are given the benefit of the doubt.
	if encoders, err := listEncoders(path); err == nil && !encoders[name] {
		return nil, Info{}, fmt.Errorf("%w: ffmpeg has no %s", ErrNoEncoderAvailable, name)
	}

	info.Backend = BackendFFmpeg
	info.Encoder = name
	return ffmpegenc.New(ffmpegenc.Options{
		FFmpegPath: path,
		Mode:       ffmpegenc.ModeSoftware,
		Logger:     opts.Logger,
	}), info, nil
}

func selectLibav(codec ports.CodecID, opts Options, info Info) (ports.VideoEncoder, Info, error) {
	if !libavAvailable() {
		return nil, Info{}, libavenc.ErrUnavailable
	}
	info.Backend = BackendLibav
	info.Encoder = libavenc.Candidates(codec)[0]
	return libavenc.New(libavenc.Options{Logger: opts.Logger}), info, nil
}

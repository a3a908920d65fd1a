package ffmpegenc

import (
	"fmt"
	"strconv"

	"github.com/user/vpetranscode/pkg/options"
	"github.com/user/vpetranscode/pkg/ports"
)

// Mode selects the ffmpeg encoder family.
type Mode int

const (
	// ModeVPE uses the VeriSilicon hardware encoders of the VPE ffmpeg build.
	ModeVPE Mode = iota
	// ModeSoftware uses libx264/libx265.
	ModeSoftware
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeSoftware {
		return "software"
	}
	return "vpe"
}

// EncoderName returns the ffmpeg encoder used for codec in mode m.
func EncoderName(m Mode, codec ports.CodecID) string {
	switch {
	case m == ModeVPE && codec == ports.CodecHEVC:
		return "hevcenc_vpe"
	case m == ModeVPE:
		return "h264enc_vpe"
	case codec == ports.CodecHEVC:
		return "libx265"
	default:
		return "libx264"
	}
}

// colourUnspecified is the ISO/IEC 23091-4 code for an unspecified colour description.
const colourUnspecified = 2

// BuildArgs returns the ffmpeg arguments that read raw frames from stdin and
// write an Annex-B elementary stream to stdout.
func BuildArgs(m Mode, cfg ports.EncoderConfig, dev ports.DeviceOptions) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}

	if m == ModeVPE {
		args = append(args, "-init_hw_device", fmt.Sprintf("vpe=dev0:%s,priority=%s,vpeloglevel=%d",
			dev.Path, dev.Priority, dev.LogLevel))
	}

	fps := cfg.FrameRate
	if fps.Num <= 0 || fps.Den <= 0 {
		fps = ports.Rational{Num: 30, Den: 1}
	}
	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", string(cfg.Format),
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", fps.String(),
		"-i", "pipe:0",
	)

	if m == ModeVPE {
		args = append(args, "-filter_hw_device", "dev0", "-vf", "hwupload")
	}
	args = append(args, "-c:v", EncoderName(m, cfg.Codec))

	if cfg.Preset != "" {
		args = append(args, "-preset", cfg.Preset)
	}
	if cfg.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(cfg.CRF))
	} else if cfg.BitRate > 0 {
		args = append(args, "-b:v", strconv.Itoa(cfg.BitRate))
	}
	if cfg.Profile != "" {
		args = append(args, "-profile:v", cfg.Profile)
	}
	if cfg.Level != "" {
		args = append(args, "-level", cfg.Level)
	}

	if m == ModeVPE {
		if cfg.ForceIDR {
			args = append(args, "-force_idr", "1")
		}
		if len(cfg.Params) > 0 {
			args = append(args, "-enc_params", options.FormatEncParams(cfg.Params))
		}
	} else {
		if cfg.ForceIDR {
			args = append(args, "-forced-idr", "1")
		}
		args = append(args, softwareParams(cfg.Params)...)
		args = append(args, "-pix_fmt", "yuv420p")
	}

	args = append(args, colourArgs(cfg)...)

	format := "h264"
	if cfg.Codec == ports.CodecHEVC {
		format = "hevc"
	}
	return append(args, "-f", format, "pipe:1")
}

// softwareParams maps the VPE enc_params that have a libx264/libx265
// equivalent. Other keys are hardware specific and dropped.
func softwareParams(params []ports.EncParam) []string {
	var args []string
	for _, p := range params {
		switch p.Key {
		case "intra_pic_rate":
			args = append(args, "-g", p.Value)
		case "gop_size":
			if n, err := strconv.Atoi(p.Value); err == nil && n >= 1 {
				args = append(args, "-bf", strconv.Itoa(n-1))
			}
		case "lookahead_depth":
			args = append(args, "-rc-lookahead", p.Value)
		}
	}
	return args
}

func colourArgs(cfg ports.EncoderConfig) []string {
	var args []string
	if cfg.ColourPrimaries > 0 && cfg.ColourPrimaries != colourUnspecified {
		args = append(args, "-color_primaries", strconv.Itoa(cfg.ColourPrimaries))
	}
	if cfg.TransferCharacteristics > 0 && cfg.TransferCharacteristics != colourUnspecified {
		args = append(args, "-color_trc", strconv.Itoa(cfg.TransferCharacteristics))
	}
	if cfg.MatrixCoeffs > 0 && cfg.MatrixCoeffs != colourUnspecified {
		args = append(args, "-colorspace", strconv.Itoa(cfg.MatrixCoeffs))
	}
	return args
}

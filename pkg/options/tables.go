package options

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/user/vpetranscode/pkg/ports"
)

// Keys understood by Device, ParseInput and Encoder.
var (
	deviceKeys  = []string{"priority", "vpeloglevel"}
	inputKeys   = []string{"video_size", "pixel_format"}
	encoderKeys = []string{"preset", "profile", "level", "b", "crf", "force_idr", "enc_params"}
)

// Tables is the set of option tables a run is configured from.
type Tables struct {
	Device  Table
	Input   Table
	Encoder Table
}

// Route merges the options of extra into the table that owns each key.
// A key no table owns is rejected.
func (ts Tables) Route(extra Table) (Tables, error) {
	var dev, in, enc Table
	for _, o := range extra {
		switch {
		case slices.Contains(deviceKeys, o.Key):
			dev = append(dev, o)
		case slices.Contains(inputKeys, o.Key):
			in = append(in, o)
		case slices.Contains(encoderKeys, o.Key):
			enc = append(enc, o)
		default:
			return ts, fmt.Errorf("%w: %q", ErrUnknownOption, o.Key)
		}
	}
	return Tables{
		Device:  ts.Device.Merge(dev),
		Input:   ts.Input.Merge(in),
		Encoder: ts.Encoder.Merge(enc),
	}, nil
}

// Device applies a device option table to opts. Unknown keys are ignored.
func Device(t Table, opts *ports.DeviceOptions) error {
	for _, o := range t {
		switch o.Key {
		case "priority":
			p, err := ports.ParsePriority(o.Value)
			if err != nil {
				return err
			}
			opts.Priority = p
		case "vpeloglevel":
			lvl, err := strconv.Atoi(o.Value)
			if err != nil {
				return fmt.Errorf("%w: vpeloglevel %q", ErrMalformed, o.Value)
			}
			opts.LogLevel = lvl
		}
	}
	return nil
}

// Input describes the raw input stream.
type Input struct {
	Width  int
	Height int
	Format ports.PixelFormat
}

// ParseInput applies an input option table.
func ParseInput(t Table) (Input, error) {
	var in Input
	for _, o := range t {
		switch o.Key {
		case "video_size":
			w, h, err := ParseSize(o.Value)
			if err != nil {
				return in, err
			}
			in.Width, in.Height = w, h
		case "pixel_format":
			f, err := ports.ParsePixelFormat(o.Value)
			if err != nil {
				return in, err
			}
			in.Format = f
		}
	}
	if in.Width == 0 || in.Height == 0 {
		return in, fmt.Errorf("%w: video_size is required", ErrInvalidSize)
	}
	if in.Format == "" {
		in.Format = ports.PixelFormatYUV420P
	}
	return in, nil
}

// Encoder applies an encoder option table to cfg.
func Encoder(t Table, cfg *ports.EncoderConfig) error {
	for _, o := range t {
		var err error
		switch o.Key {
		case "preset":
			cfg.Preset = o.Value
		case "profile":
			cfg.Profile = o.Value
		case "level":
			cfg.Level = o.Value
		case "b":
			cfg.BitRate, err = atoi(o)
		case "crf":
			cfg.CRF, err = atoi(o)
		case "force_idr":
			var v int
			v, err = atoi(o)
			cfg.ForceIDR = v != 0
		case "enc_params":
			cfg.Params, err = ParseEncParams(o.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func atoi(o Option) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(o.Value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformed, o.Key, o.Value)
	}
	return v, nil
}

// ParseEncParams splits "k1=v1:k2=v2" into an ordered parameter list.
func ParseEncParams(s string) ([]ports.EncParam, error) {
	if s == "" {
		return nil, nil
	}
	var params []ports.EncParam
	for _, seg := range strings.Split(s, ":") {
		k, v, ok := strings.Cut(seg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: enc_params segment %q", ErrMalformed, seg)
		}
		params = append(params, ports.EncParam{Key: k, Value: v})
	}
	return params, nil
}

// FormatEncParams is the inverse of ParseEncParams.
func FormatEncParams(params []ports.EncParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, ":")
}

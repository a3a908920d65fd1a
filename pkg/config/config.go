// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/user/vpetranscode/pkg/options"
	"github.com/user/vpetranscode/pkg/orchestrator"
	"github.com/user/vpetranscode/pkg/ports"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config represents the full configuration for vpetranscode.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Device  DeviceConfig  `yaml:"device"`
	Encoder EncoderConfig `yaml:"encoder"`
	Backend BackendConfig `yaml:"backend"`
	Stats   StatsConfig   `yaml:"stats"`

	// Options are raw key=value entries applied over the device, input and
	// encoder tables. Later entries win.
	Options []string `yaml:"options"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	LogLevel string `yaml:"log_level"`
}

// InputConfig describes the raw YUV input.
type InputConfig struct {
	Path        string `yaml:"path"`
	VideoSize   string `yaml:"video_size"`
	PixelFormat string `yaml:"pixel_format"`
	FrameRate   string `yaml:"fps"`
}

// OutputConfig describes the bitstream output and the preprocessed geometry.
type OutputConfig struct {
	// Path is the bitstream file; empty discards the bitstream.
	Path string `yaml:"path"`
	// Scale is the optional low-resolution output of the preprocessor, WxH.
	Scale       string `yaml:"scale"`
	PixelFormat string `yaml:"pixel_format"`
}

// DeviceConfig describes the transcoder device.
type DeviceConfig struct {
	Path        string `yaml:"path"`
	Priority    string `yaml:"priority"`
	VPELogLevel int    `yaml:"vpeloglevel"`
	Require     bool   `yaml:"require"`
}

// EncoderConfig holds the encoder option table.
type EncoderConfig struct {
	Codec     string `yaml:"codec"`
	Preset    string `yaml:"preset"`
	Bitrate   int    `yaml:"bitrate"`
	EncParams string `yaml:"enc_params"`
	CRF       int    `yaml:"crf"`
	Profile   string `yaml:"profile"`
	Level     string `yaml:"level"`
	ForceIDR  bool   `yaml:"force_idr"`

	ColourPrimaries         int `yaml:"colour_primaries"`
	TransferCharacteristics int `yaml:"transfer_characteristics"`
	MatrixCoeffs            int `yaml:"matrix_coeffs"`
}

// BackendConfig selects the encoder backend.
type BackendConfig struct {
	Name       string `yaml:"name"`
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// StatsConfig controls progress output and the run summary.
type StatsConfig struct {
	Quiet       bool   `yaml:"quiet"`
	SummaryPath string `yaml:"summary"`
	PoolDepth   int    `yaml:"pool_depth"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Input: InputConfig{
			VideoSize:   "1920x1080",
			PixelFormat: "yuv420p",
			FrameRate:   "30/1",
		},
		Device: DeviceConfig{
			Path:        "/dev/transcoder0",
			Priority:    "vod",
			VPELogLevel: 7,
		},
		Encoder: EncoderConfig{
			Codec:     "h264enc",
			Preset:    "fast",
			Bitrate:   1000000,
			EncParams: "intra_pic_rate=100:gop_size=1",
			CRF:       -1,

			ColourPrimaries:         2,
			TransferCharacteristics: 2,
			MatrixCoeffs:            2,
		},
		Backend: BackendConfig{
			Name: "auto",
		},
		Stats: StatsConfig{
			PoolDepth: 78,
		},

		// Debug
		DebugDir: "./debug",

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// DeviceTable returns the device option table.
func (c Config) DeviceTable() options.Table {
	return options.Table{
		{Key: "priority", Value: c.Device.Priority},
		{Key: "vpeloglevel", Value: strconv.Itoa(c.Device.VPELogLevel)},
	}
}

// InputTable returns the input option table.
func (c Config) InputTable() options.Table {
	return options.Table{
		{Key: "video_size", Value: c.Input.VideoSize},
		{Key: "pixel_format", Value: c.Input.PixelFormat},
	}
}

// EncoderTable returns the encoder option table. Unset optional keys are omitted.
func (c Config) EncoderTable() options.Table {
	t := options.Table{
		{Key: "preset", Value: c.Encoder.Preset},
		{Key: "b", Value: strconv.Itoa(c.Encoder.Bitrate)},
		{Key: "enc_params", Value: c.Encoder.EncParams},
	}
	if c.Encoder.CRF >= 0 {
		t = t.Set("crf", strconv.Itoa(c.Encoder.CRF))
	}
	if c.Encoder.Profile != "" {
		t = t.Set("profile", c.Encoder.Profile)
	}
	if c.Encoder.Level != "" {
		t = t.Set("level", c.Encoder.Level)
	}
	if c.Encoder.ForceIDR {
		t = t.Set("force_idr", "1")
	}
	return t
}

// Tables returns the device, input and encoder option tables with Options
// merged on top.
func (c Config) Tables() (options.Tables, error) {
	base := options.Tables{
		Device:  c.DeviceTable(),
		Input:   c.InputTable(),
		Encoder: c.EncoderTable(),
	}
	extra, err := options.ParseTable(c.Options)
	if err != nil {
		return base, err
	}
	return base.Route(extra)
}

// Validate checks that the configuration can be turned into a run.
func (c Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("%w: input path is required", ErrInvalid)
	}
	if c.Stats.PoolDepth < 0 {
		return fmt.Errorf("%w: pool_depth must not be negative", ErrInvalid)
	}
	if _, err := c.ToOrchestratorConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() (orchestrator.Config, error) {
	oc := orchestrator.DefaultConfig()
	oc.InputPath = c.Input.Path
	oc.OutputPath = c.Output.Path

	tables, err := c.Tables()
	if err != nil {
		return oc, err
	}

	in, err := options.ParseInput(tables.Input)
	if err != nil {
		return oc, err
	}
	oc.Width, oc.Height, oc.Format = in.Width, in.Height, in.Format

	if c.Output.Scale != "" {
		if oc.OutWidth, oc.OutHeight, err = options.ParseSize(c.Output.Scale); err != nil {
			return oc, err
		}
	}
	if c.Output.PixelFormat != "" {
		if oc.OutFormat, err = ports.ParsePixelFormat(c.Output.PixelFormat); err != nil {
			return oc, err
		}
	}

	oc.Device.Path = c.Device.Path
	oc.RequireDevice = c.Device.Require
	if err := options.Device(tables.Device, &oc.Device); err != nil {
		return oc, err
	}

	enc := ports.EncoderConfig{
		CRF:                     -1,
		ColourPrimaries:         c.Encoder.ColourPrimaries,
		TransferCharacteristics: c.Encoder.TransferCharacteristics,
		MatrixCoeffs:            c.Encoder.MatrixCoeffs,
	}
	if enc.Codec, err = ports.ParseCodecName(c.Encoder.Codec); err != nil {
		return oc, err
	}
	if err := options.Encoder(tables.Encoder, &enc); err != nil {
		return oc, err
	}
	if c.Input.FrameRate != "" {
		if enc.FrameRate, err = options.ParseRational(c.Input.FrameRate); err != nil {
			return oc, err
		}
	} else {
		enc.FrameRate = ports.Rational{Num: 30, Den: 1}
	}
	oc.Encoder = enc

	if c.Stats.PoolDepth > 0 {
		oc.PoolDepth = c.Stats.PoolDepth
	}
	return oc, nil
}

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/vpetranscode/pkg/config"
	"github.com/user/vpetranscode/pkg/ports"
)

// parse runs args through the transcode flags and returns the merged config.
func parse(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var (
		cfg      config.Config
		buildErr error
	)
	app := &cli.App{
		Name:                      "vpetranscode",
		DisableSliceFlagSeparator: newApp().DisableSliceFlagSeparator,
		Flags:                     transcodeFlags(),
		Action: func(c *cli.Context) error {
			cfg, buildErr = buildConfig(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"vpetranscode"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return cfg, buildErr
}

func TestBuildConfig_Positional(t *testing.T) {
	cfg, err := parse(t, "in.yuv", "hevcenc", "out.hevc")
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Input.Path != "in.yuv" || cfg.Encoder.Codec != "hevcenc" || cfg.Output.Path != "out.hevc" {
		t.Errorf("unexpected positional mapping %+v", cfg)
	}
	if cfg.Encoder.Preset != "fast" || cfg.Input.VideoSize != "1920x1080" {
		t.Errorf("defaults should be kept, got %+v", cfg.Encoder)
	}
}

func TestBuildConfig_OutputOptional(t *testing.T) {
	cfg, err := parse(t, "in.yuv", "h264enc")
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Output.Path != "" {
		t.Errorf("expected empty output path, got %q", cfg.Output.Path)
	}
}

func TestBuildConfig_Usage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"in.yuv"},
		{"in.yuv", "h264enc", "out.h264", "extra"},
	} {
		if _, err := parse(t, args...); !errors.Is(err, errUsage) {
			t.Errorf("args %v: expected usage error, got %v", args, err)
		}
	}
}

func TestBuildConfig_Flags(t *testing.T) {
	cfg, err := parse(t,
		"--priority", "live",
		"--video-size", "1280x720",
		"--pixel-format", "nv12",
		"-b", "2000000",
		"--enc-params", "gop_size=4",
		"--crf", "23",
		"--force-idr",
		"--scale", "640x360",
		"--backend", "ffmpeg",
		"in.nv12", "h264enc",
	)
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Device.Priority != "live" || cfg.Input.VideoSize != "1280x720" || cfg.Input.PixelFormat != "nv12" {
		t.Errorf("unexpected device / input %+v %+v", cfg.Device, cfg.Input)
	}
	if cfg.Encoder.Bitrate != 2000000 || cfg.Encoder.EncParams != "gop_size=4" || cfg.Encoder.CRF != 23 || !cfg.Encoder.ForceIDR {
		t.Errorf("unexpected encoder %+v", cfg.Encoder)
	}
	if cfg.Output.Scale != "640x360" || cfg.Backend.Name != "ffmpeg" {
		t.Errorf("unexpected output / backend %+v %+v", cfg.Output, cfg.Backend)
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "input:\n  path: file.yuv\nencoder:\n  codec: hevcenc\n  preset: slow\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parse(t, "--config", path, "--preset", "medium")
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Input.Path != "file.yuv" || cfg.Encoder.Codec != "hevcenc" {
		t.Errorf("file values should be used without positional args, got %+v", cfg)
	}
	if cfg.Encoder.Preset != "medium" {
		t.Errorf("expected flag to override preset, got %q", cfg.Encoder.Preset)
	}
	if cfg.Device.Path != "/dev/transcoder0" {
		t.Errorf("unset flags must not override, got device %q", cfg.Device.Path)
	}
}

func TestBuildConfig_Options(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "options:\n  - priority=live\n  - crf=30\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parse(t, "--config", path,
		"-o", "crf=20",
		"--option", "profile=main,high",
		"--option", "enc_params=intra_pic_rate=50:gop_size=1",
		"in.yuv", "h264enc",
	)
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	want := []string{"priority=live", "crf=30", "crf=20", "profile=main,high", "enc_params=intra_pic_rate=50:gop_size=1"}
	if len(cfg.Options) != len(want) {
		t.Fatalf("expected options %v, got %v", want, cfg.Options)
	}
	for i := range want {
		if cfg.Options[i] != want[i] {
			t.Errorf("option %d: expected %q, got %q", i, want[i], cfg.Options[i])
		}
	}

	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		t.Fatalf("ToOrchestratorConfig failed: %v", err)
	}
	if oc.Device.Priority != ports.PriorityLive || oc.Encoder.CRF != 20 || oc.Encoder.Profile != "main,high" {
		t.Errorf("options not applied: %+v %+v", oc.Device, oc.Encoder)
	}
}

func TestBuildConfig_UnknownOption(t *testing.T) {
	cfg, err := parse(t, "-o", "bitrate=1", "in.yuv", "h264enc")
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

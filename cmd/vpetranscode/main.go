// Package main provides the CLI entry point for vpetranscode.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vpetranscode/pkg/adapters/bitstream"
	"github.com/user/vpetranscode/pkg/adapters/ffmpegenc"
	"github.com/user/vpetranscode/pkg/adapters/filesink"
	"github.com/user/vpetranscode/pkg/adapters/libavenc"
	"github.com/user/vpetranscode/pkg/adapters/logger"
	"github.com/user/vpetranscode/pkg/adapters/nullsink"
	"github.com/user/vpetranscode/pkg/adapters/osfilesystem"
	"github.com/user/vpetranscode/pkg/adapters/smartencoder"
	"github.com/user/vpetranscode/pkg/adapters/swpp"
	"github.com/user/vpetranscode/pkg/adapters/vpidevice"
	"github.com/user/vpetranscode/pkg/adapters/yuvreader"
	"github.com/user/vpetranscode/pkg/config"
	"github.com/user/vpetranscode/pkg/options"
	"github.com/user/vpetranscode/pkg/orchestrator"
	"github.com/user/vpetranscode/pkg/ports"
	"github.com/user/vpetranscode/pkg/summarizer"
)

var version = "dev"

// Exit codes
const (
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "vpetranscode",
		Usage:     l10n.T("Transcode raw YUV files on a VeriSilicon transcoder card"),
		UsageText: "vpetranscode [options] <input file> <codec name> [output file]",
		Version:   version,
		Flags:     transcodeFlags(),
		Action:    runTranscode,
		Commands: []*cli.Command{
			{
				Name:      "transcode",
				Usage:     l10n.T("Encode a raw YUV file to H.264 or HEVC"),
				ArgsUsage: "<input file> <codec name> [output file]",
				Flags:     transcodeFlags(),
				Action:    runTranscode,
			},
			{
				Name:   "probe",
				Usage:  l10n.T("Report the device, the vendor library and the available encoders"),
				Flags:  probeFlags(),
				Action: runProbe,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("vpetranscode version %s", version))
					return nil
				},
			},
		},
		// --option values are taken verbatim, commas included.
		DisableSliceFlagSeparator: true,
	}
}

func transcodeFlags() []cli.Flag {
	d := config.Defaults()
	var (
		catConfig  = l10n.T("Configuration")
		catDevice  = l10n.T("Device")
		catInput   = l10n.T("Input")
		catEncoder = l10n.T("Encoder")
		catOutput  = l10n.T("Output")
		catDebug   = l10n.T("Debug")
		catLogging = l10n.T("Logging")
	)

	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Category: catConfig,
			Usage: l10n.T("YAML configuration file; flags override its values")},

		// Device
		&cli.StringFlag{Name: "device", Value: d.Device.Path, Category: catDevice,
			Usage: l10n.T("Transcoder device node")},
		&cli.StringFlag{Name: "priority", Value: d.Device.Priority, Category: catDevice,
			Usage: l10n.T("Task priority (vod, live)")},
		&cli.IntFlag{Name: "vpe-log-level", Value: d.Device.VPELogLevel, Category: catDevice,
			Usage: l10n.T("Vendor library log level (0 = quiet)")},
		&cli.BoolFlag{Name: "require-device", Category: catDevice,
			Usage: l10n.T("Fail when the device cannot be opened instead of encoding in software")},

		// Input
		&cli.StringFlag{Name: "video-size", Aliases: []string{"s"}, Value: d.Input.VideoSize, Category: catInput,
			Usage: l10n.T("Input frame size (WxH)")},
		&cli.StringFlag{Name: "pixel-format", Value: d.Input.PixelFormat, Category: catInput,
			Usage: l10n.T("Input pixel format (yuv420p, nv12)")},
		&cli.StringFlag{Name: "fps", Value: d.Input.FrameRate, Category: catInput,
			Usage: l10n.T("Input frame rate (N or N/D)")},

		// Encoder
		&cli.StringFlag{Name: "preset", Value: d.Encoder.Preset, Category: catEncoder,
			Usage: l10n.T("Encoder preset")},
		&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Value: d.Encoder.Bitrate, Category: catEncoder,
			Usage: l10n.T("Target bit rate in bits per second")},
		&cli.StringFlag{Name: "enc-params", Value: d.Encoder.EncParams, Category: catEncoder,
			Usage: l10n.T("Encoder parameters (key=value:key=value)")},
		&cli.IntFlag{Name: "crf", Value: d.Encoder.CRF, Category: catEncoder,
			Usage: l10n.T("Constant rate factor (-1 = use bit rate)")},
		&cli.StringFlag{Name: "profile", Category: catEncoder,
			Usage: l10n.T("Encoder profile")},
		&cli.StringFlag{Name: "level", Category: catEncoder,
			Usage: l10n.T("Encoder level")},
		&cli.BoolFlag{Name: "force-idr", Category: catEncoder,
			Usage: l10n.T("Make every intra picture an IDR picture")},
		&cli.StringSliceFlag{Name: "option", Aliases: []string{"o"}, Category: catEncoder,
			Usage: l10n.T("Raw key=value device, input or encoder option; repeatable, applied last")},
		&cli.StringFlag{Name: "backend", Value: d.Backend.Name, Category: catEncoder,
			Usage: l10n.T("Encoder backend (auto, vpe, ffmpeg, libav)")},
		&cli.StringFlag{Name: "ffmpeg-path", Category: catEncoder,
			Usage: l10n.T("Path to the ffmpeg executable")},

		// Output
		&cli.StringFlag{Name: "scale", Category: catOutput,
			Usage: l10n.T("Scale frames to WxH before encoding")},
		&cli.StringFlag{Name: "summary", Category: catOutput,
			Usage: l10n.T("Output execution summary to file (Markdown format)")},
		&cli.IntFlag{Name: "pool-depth", Value: d.Stats.PoolDepth, Category: catOutput,
			Usage: l10n.T("Maximum number of frames in flight")},

		// Debug
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Category: catDebug,
			Usage: l10n.T("Enable debug output")},
		&cli.StringFlag{Name: "debug-dir", Value: d.DebugDir, Category: catDebug,
			Usage: l10n.T("Directory for debug output")},

		// Logging
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: d.LogLevel, Category: catLogging,
			Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Category: catLogging,
			Usage: l10n.T("Suppress all log output")},
	}
}

func probeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "device", Value: vpidevice.DefaultPath,
			Usage: l10n.T("Transcoder device node")},
		&cli.StringFlag{Name: "ffmpeg-path",
			Usage: l10n.T("Path to the ffmpeg executable")},
	}
}

// buildConfig merges the config file, the flags and the positional arguments.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	configPath := c.String("config")
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(configPath); err != nil {
			return cfg, err
		}
	}

	// Positional arguments; without a config file input and codec are required.
	args := c.Args()
	if args.Len() < 2 && configPath == "" {
		return cfg, errUsage
	}
	if args.Len() > 3 {
		return cfg, errUsage
	}
	if v := args.Get(0); v != "" {
		cfg.Input.Path = v
	}
	if v := args.Get(1); v != "" {
		cfg.Encoder.Codec = v
	}
	if v := args.Get(2); v != "" {
		cfg.Output.Path = v
	}

	if c.IsSet("device") {
		cfg.Device.Path = c.String("device")
	}
	if c.IsSet("priority") {
		cfg.Device.Priority = c.String("priority")
	}
	if c.IsSet("vpe-log-level") {
		cfg.Device.VPELogLevel = c.Int("vpe-log-level")
	}
	if c.IsSet("require-device") {
		cfg.Device.Require = c.Bool("require-device")
	}
	if c.IsSet("video-size") {
		cfg.Input.VideoSize = c.String("video-size")
	}
	if c.IsSet("pixel-format") {
		cfg.Input.PixelFormat = c.String("pixel-format")
	}
	if c.IsSet("fps") {
		cfg.Input.FrameRate = c.String("fps")
	}
	if c.IsSet("preset") {
		cfg.Encoder.Preset = c.String("preset")
	}
	if c.IsSet("bitrate") {
		cfg.Encoder.Bitrate = c.Int("bitrate")
	}
	if c.IsSet("enc-params") {
		cfg.Encoder.EncParams = c.String("enc-params")
	}
	if c.IsSet("crf") {
		cfg.Encoder.CRF = c.Int("crf")
	}
	if c.IsSet("profile") {
		cfg.Encoder.Profile = c.String("profile")
	}
	if c.IsSet("level") {
		cfg.Encoder.Level = c.String("level")
	}
	if c.IsSet("force-idr") {
		cfg.Encoder.ForceIDR = c.Bool("force-idr")
	}
	if c.IsSet("option") {
		cfg.Options = append(cfg.Options, c.StringSlice("option")...)
	}
	if c.IsSet("backend") {
		cfg.Backend.Name = c.String("backend")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.Backend.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("scale") {
		cfg.Output.Scale = c.String("scale")
	}
	if c.IsSet("summary") {
		cfg.Stats.SummaryPath = c.String("summary")
	}
	if c.IsSet("pool-depth") {
		cfg.Stats.PoolDepth = c.Int("pool-depth")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("quiet") {
		cfg.Stats.Quiet = c.Bool("quiet")
	}

	return cfg, nil
}

var errUsage = errors.New("usage: vpetranscode [options] <input file> <codec name> [output file]")

func runTranscode(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		if errors.Is(err, errUsage) {
			return cli.Exit(l10n.T(err.Error()), exitFailure)
		}
		return cli.Exit(err, exitFailure)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, exitFailure)
	}
	backend, err := smartencoder.ParseBackend(cfg.Backend.Name)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	tables, err := cfg.Tables()
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	// Create logger
	var log ports.Logger
	progress := io.Writer(os.Stdout)
	if cfg.Stats.Quiet {
		log = logger.NewNoop()
		progress = io.Discard
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}
	log.Debug("Device options: %s", strings.Join(tables.Device.Strings(), " "))
	log.Debug("Encoder options: %s", strings.Join(tables.Encoder.Strings(), " "))

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fs := osfilesystem.New()

	// Create sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return cli.Exit(fmt.Errorf("create debug directory: %w", err), exitFailure)
		}
		sink = filesink.New(cfg.DebugDir, fs, filesink.DefaultMaxFrames)
	} else {
		sink = nullsink.New()
	}

	reader, err := yuvreader.Open(fs, oc.InputPath, oc.Width, oc.Height, oc.Format)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	defer reader.Close()

	outWidth, outHeight := oc.Width, oc.Height
	if oc.OutWidth > 0 {
		outWidth, outHeight = oc.OutWidth, oc.OutHeight
	}
	writer, err := bitstream.Open(fs, bitstream.OutputOptions{
		Path:      oc.OutputPath,
		Codec:     oc.Encoder.Codec,
		Width:     outWidth,
		Height:    outHeight,
		FrameRate: oc.Encoder.FrameRate,
		BFrames:   oc.Encoder.MaxBFrames(),
	})
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	newEncoder := func(deviceOpen bool) (ports.VideoEncoder, orchestrator.EncoderInfo, error) {
		enc, info, err := smartencoder.New(oc.Encoder.Codec, smartencoder.Options{
			Backend:    backend,
			FFmpegPath: cfg.Backend.FFmpegPath,
			Device:     oc.Device,
			DeviceOpen: deviceOpen,
			Logger:     log,
		})
		if err != nil {
			return nil, orchestrator.EncoderInfo{}, err
		}
		return enc, orchestrator.EncoderInfo{
			Backend:  string(info.Backend),
			Encoder:  info.Encoder,
			Fallback: info.FallbackUsed,
		}, nil
	}

	orch := orchestrator.New(vpidevice.New(log), swpp.New(), newEncoder, sink, log, progress)
	result, runErr := orch.Run(ctx, oc, reader, writer)

	if err := writer.Close(); err != nil {
		log.Error("Failed to close output %s: %s", oc.OutputPath, err)
		runErr = errors.Join(runErr, err)
	}

	if cfg.Stats.SummaryPath != "" {
		writeSummary(fs, cfg, oc, result, log)
	}

	if runErr != nil {
		if result.Interrupted {
			return cli.Exit("", exitInterrupted)
		}
		return cli.Exit(runErr, exitFailure)
	}
	if oc.OutputPath != "" {
		log.Info("Output saved to %s", oc.OutputPath)
	}
	return nil
}

func writeSummary(fs ports.FileSystem, cfg config.Config, oc orchestrator.Config, result orchestrator.RunResult, log ports.Logger) {
	summary := summarizer.NewBuilder().
		WithInput(summarizer.InputInfo{
			Path:   result.InputPath,
			Width:  result.Width,
			Height: result.Height,
			Format: string(result.Format),
		}).
		WithDevice(result.DevicePath, result.DeviceOpen).
		WithEncoder(summarizer.EncoderInfo{
			Codec:    cfg.Encoder.Codec,
			Backend:  result.Backend,
			Name:     result.Encoder,
			Fallback: result.Fallback,
			Preset:   oc.Encoder.Preset,
			BitRate:  oc.Encoder.BitRate,
			Params:   options.FormatEncParams(oc.Encoder.Params),
		}).
		WithOutput(result.OutputPath, result.Packets, result.Bytes).
		WithPerformance(summarizer.PerformanceInfo{
			FramesIn:    result.FramesIn,
			FramesOut:   result.FramesOut,
			Elapsed:     result.Elapsed,
			FPS:         result.FPS,
			MinLatency:  result.MinLatency,
			AvgLatency:  result.AvgLatency,
			MaxLatency:  result.MaxLatency,
			Interrupted: result.Interrupted,
			PoolDepth:   result.PoolDepth,
		}).
		Build()

	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	), fs)
	if err := w.Write(cfg.Stats.SummaryPath, summary); err != nil {
		log.Warn("Failed to write summary: %s", err)
		return
	}
	log.Info("Summary saved to %s", cfg.Stats.SummaryPath)
}

func runProbe(c *cli.Context) error {
	out := c.App.Writer
	yesNo := func(ok bool) string {
		if ok {
			return l10n.T("yes")
		}
		return l10n.T("no")
	}

	r := vpidevice.Probe(c.String("device"), nil)
	if r.Available() {
		fmt.Fprintln(out, l10n.F("Device %s: available", r.DevicePath))
	} else {
		fmt.Fprintln(out, l10n.F("Device %s: unavailable (%s)", r.DevicePath, r.DeviceError))
	}
	if r.LibraryError == "" {
		fmt.Fprintln(out, l10n.F("VPI library: %s", r.LibraryPath))
	} else {
		fmt.Fprintln(out, l10n.F("VPI library: unavailable (%s)", r.LibraryError))
	}
	fmt.Fprintln(out, l10n.F("libavcodec backend: %s", yesNo(libavenc.Available())))

	path, err := ffmpegenc.FindFFmpeg(c.String("ffmpeg-path"))
	if err != nil {
		fmt.Fprintln(out, l10n.F("ffmpeg: unavailable (%s)", err))
		return nil
	}
	fmt.Fprintln(out, l10n.F("ffmpeg: %s", path))

	encoders, err := ffmpegenc.ListEncoders(path)
	if err != nil {
		fmt.Fprintln(out, l10n.F("Failed to list encoders: %s", err))
		return nil
	}
	for _, codec := range []ports.CodecID{ports.CodecH264, ports.CodecHEVC} {
		for _, mode := range []ffmpegenc.Mode{ffmpegenc.ModeVPE, ffmpegenc.ModeSoftware} {
			name := ffmpegenc.EncoderName(mode, codec)
			fmt.Fprintf(out, "  %-12s %s\n", name, yesNo(encoders[name]))
		}
	}
	return nil
}

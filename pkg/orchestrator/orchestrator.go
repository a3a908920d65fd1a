// Package orchestrator runs the transcode loop.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/user/vpetranscode/pkg/framepool"
	"github.com/user/vpetranscode/pkg/pipeline"
	"github.com/user/vpetranscode/pkg/ports"
	"github.com/user/vpetranscode/pkg/stages/encode"
	"github.com/user/vpetranscode/pkg/stages/preprocess"
	"github.com/user/vpetranscode/pkg/stats"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input
	InputPath string
	Width     int
	Height    int
	Format    ports.PixelFormat

	// Output
	OutputPath string

	// Device
	Device ports.DeviceOptions
	// RequireDevice makes a device that fails to open fatal.
	RequireDevice bool

	// Preprocessing; zero values keep the input geometry and format.
	OutWidth  int
	OutHeight int
	OutFormat ports.PixelFormat

	// Encoding; the frame geometry is filled in from the first preprocessed frame.
	Encoder ports.EncoderConfig

	// PoolDepth is the number of frames that may be in flight at once.
	PoolDepth int
}

// DefaultConfig returns the stock configuration: 1080p yuv420p input on
// /dev/transcoder0 at vod priority, encoded as fast 1 Mbit/s H.264.
func DefaultConfig() Config {
	return Config{
		Width:  1920,
		Height: 1080,
		Format: ports.PixelFormatYUV420P,
		Device: ports.DeviceOptions{
			Path:     "/dev/transcoder0",
			Priority: ports.PriorityVOD,
			LogLevel: 7,
		},
		Encoder: ports.EncoderConfig{
			Codec:     ports.CodecH264,
			FrameRate: ports.Rational{Num: 30, Den: 1},
			Preset:    "fast",
			BitRate:   1000000,
			CRF:       -1,
			Params: []ports.EncParam{
				{Key: "intra_pic_rate", Value: "100"},
				{Key: "gop_size", Value: "1"},
			},
			ColourPrimaries:         2,
			TransferCharacteristics: 2,
			MatrixCoeffs:            2,
		},
		PoolDepth: framepool.DefaultDepth,
	}
}

// EncoderInfo describes the encoder an EncoderFactory selected.
type EncoderInfo struct {
	Backend  string
	Encoder  string
	Fallback bool
}

// EncoderFactory creates the encoder once the device state is known.
type EncoderFactory func(deviceOpen bool) (ports.VideoEncoder, EncoderInfo, error)

// Orchestrator coordinates the device, the preprocessor and the encoder.
type Orchestrator struct {
	device     ports.HWDevice
	pp         ports.Preprocessor
	newEncoder EncoderFactory
	sink       ports.DebugSink
	logger     ports.Logger
	progress   io.Writer
	clock      stats.Clock
}

// New creates a new Orchestrator. Progress lines are written to progress.
func New(
	device ports.HWDevice,
	pp ports.Preprocessor,
	newEncoder EncoderFactory,
	sink ports.DebugSink,
	logger ports.Logger,
	progress io.Writer,
) *Orchestrator {
	return &Orchestrator{
		device:     device,
		pp:         pp,
		newEncoder: newEncoder,
		sink:       sink,
		logger:     logger,
		progress:   progress,
		clock:      time.Now,
	}
}

// SetClock replaces the clock used for statistics.
func (o *Orchestrator) SetClock(clock stats.Clock) {
	o.clock = clock
}

// closer is a resource released at the end of Run.
type closer struct {
	name  string
	close func() error
}

// Run transcodes every frame of reader into writer.
//
// The device, the preprocessor and the encoder are closed in reverse order
// of opening whether or not the run succeeds. reader and writer belong to
// the caller.
func (o *Orchestrator) Run(ctx context.Context, config Config, reader ports.FrameReader, writer ports.PacketWriter) (result RunResult, err error) {
	o.logger.Info("Transcoding %s to %s", config.InputPath, config.Encoder.Codec)

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			c := closers[i]
			if cerr := c.close(); cerr != nil {
				o.logger.Error("Failed to close %s: %s", c.name, cerr)
				err = errors.Join(err, fmt.Errorf("close %s: %w", c.name, cerr))
			}
		}
	}()

	result = RunResult{
		InputPath:  config.InputPath,
		OutputPath: config.OutputPath,
		Codec:      config.Encoder.Codec,
		DevicePath: config.Device.Path,
		Width:      config.Width,
		Height:     config.Height,
		Format:     config.Format,
	}

	// 1. Device
	if err := o.device.Open(ctx, config.Device); err != nil {
		if config.RequireDevice {
			o.logger.Error("Failed to open device %s: %s", config.Device.Path, err)
			return result, fmt.Errorf("open device: %w", err)
		}
		o.logger.Warn("Device %s unavailable, continuing without hardware: %s", config.Device.Path, err)
	} else {
		result.DeviceOpen = true
		closers = append(closers, closer{"device", o.device.Close})
		info := o.device.Info()
		o.logger.Info("Device %s opened (priority %s)", info.Path, info.Priority)
	}

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(config, "", "  "); err == nil {
			if err := o.sink.SaveConfigJSON(data); err != nil {
				o.logger.Warn("Failed to save debug config: %s", err)
			}
		}
	}

	// 2. Preprocessor
	ppOpts := ports.PPOptions{
		Width:     config.Width,
		Height:    config.Height,
		Format:    config.Format,
		OutWidth:  config.OutWidth,
		OutHeight: config.OutHeight,
		OutFormat: config.OutFormat,
		NbOutputs: 1,
	}
	if err := o.pp.Init(ppOpts); err != nil {
		o.logger.Error("Failed to initialize preprocessor: %s", err)
		return result, fmt.Errorf("init preprocessor: %w", err)
	}
	closers = append(closers, closer{"preprocessor", o.pp.Close})

	// 3. Encoder; initialized by the encode stage on the first frame.
	encoder, info, err := o.newEncoder(result.DeviceOpen)
	if err != nil {
		o.logger.Error("Failed to create encoder: %s", err)
		return result, fmt.Errorf("create encoder: %w", err)
	}
	closers = append(closers, closer{"encoder", encoder.Close})
	result.Backend = info.Backend
	result.Encoder = info.Encoder
	result.Fallback = info.Fallback
	o.logger.Info("Encoding with %s (%s backend)", info.Encoder, info.Backend)

	pool := framepool.New(config.PoolDepth)
	result.PoolDepth = pool.Depth()
	tracker := stats.New(o.progress, o.clock)
	ppStage := preprocess.NewStage(o.pp, pool, o.sink, o.logger)
	encStage := encode.NewStage(encoder, pool, writer, tracker, config.Encoder, o.logger)

	// 4. Loop
	tracker.Start()
	loopErr := o.loop(ctx, reader, ppStage, encStage, tracker, &result)

	// 5. Flush
	if loopErr == nil {
		flushed, err := encStage.Execute(ctx, pipeline.EncodeInput{})
		result.Packets += flushed.Packets
		if err != nil {
			loopErr = fmt.Errorf("flush encoder: %w", err)
		}
	}

	tracker.Report(true)
	o.fillStats(&result, tracker, writer)
	if named, ok := encoder.(ports.NamedEncoder); ok && named.Name() != "" {
		result.Encoder = named.Name()
	}

	if o.sink.Enabled() {
		if err := o.sink.SaveLatencyCSV(tracker.LatencyCSV()); err != nil {
			o.logger.Warn("Failed to save latency CSV: %s", err)
		}
	}

	if loopErr != nil {
		if errors.Is(loopErr, context.Canceled) {
			result.Interrupted = true
			o.logger.Warn("Interrupted after %d frames", result.FramesIn)
		} else {
			o.logger.Error("Transcode failed: %s", loopErr)
		}
		return result, loopErr
	}

	o.logger.Info("Transcode completed: %d frames, %.1f fps", result.FramesOut, result.FPS)
	return result, nil
}

// loop reads, preprocesses and encodes frames until the input ends.
func (o *Orchestrator) loop(
	ctx context.Context,
	reader ports.FrameReader,
	ppStage pipeline.Stage[pipeline.PreprocessInput, pipeline.PreprocessResult],
	encStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	tracker *stats.Tracker,
	result *RunResult,
) error {
	in := &ports.Frame{Slot: -1}
	readStage := pipeline.StageFunc[int, *ports.Frame](func(ctx context.Context, index int) (*ports.Frame, error) {
		if err := reader.ReadFrame(in); err != nil {
			return nil, err
		}
		tracker.FrameIn()
		return in, nil
	})

	for index := 0; ; index++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := readStage.Execute(ctx, index)
		if err != nil {
			if err == io.EOF {
				o.logger.Debug("End of input after %d frames", index)
				return nil
			}
			return fmt.Errorf("read frame %d: %w", index, err)
		}

		pp, err := ppStage.Execute(ctx, pipeline.PreprocessInput{Index: index, Frame: frame})
		if err != nil {
			return err
		}
		enc, err := encStage.Execute(ctx, pipeline.EncodeInput{Frame: pp.Frame})
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", index, err)
		}
		result.Packets += enc.Packets

		tracker.Report(false)
	}
}

func (o *Orchestrator) fillStats(result *RunResult, tracker *stats.Tracker, writer ports.PacketWriter) {
	snap := tracker.Snapshot()
	result.FramesIn = snap.FramesIn
	result.FramesOut = snap.FramesOut
	result.Elapsed = snap.Elapsed
	result.FPS = snap.FPS
	result.MinLatency = snap.MinLatency
	result.AvgLatency = snap.AvgLatency
	result.MaxLatency = snap.MaxLatency
	result.Bytes = writer.BytesWritten()
}

// RunResult contains the results of a transcode run for summary generation.
type RunResult struct {
	// Input / output
	InputPath  string
	OutputPath string
	Width      int
	Height     int
	Format     ports.PixelFormat

	// Device
	DevicePath string
	DeviceOpen bool

	// Encoder
	Codec    ports.CodecID
	Backend  string
	Encoder  string
	Fallback bool

	// Throughput
	FramesIn    int
	FramesOut   int
	Packets     int
	Bytes       int64
	Elapsed     time.Duration
	FPS         float64
	Interrupted bool
	PoolDepth   int

	// Latency of the tracked frames
	MinLatency time.Duration
	AvgLatency time.Duration
	MaxLatency time.Duration
}

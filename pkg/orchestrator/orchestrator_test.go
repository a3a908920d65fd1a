package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/vpetranscode/pkg/mocks"
	"github.com/user/vpetranscode/pkg/ports"
)

// fixture wires mocks into an orchestrator and records the close order.
type fixture struct {
	device   *mocks.HWDevice
	pp       *mocks.Preprocessor
	encoder  *mocks.VideoEncoder
	sink     *mocks.DebugSink
	logger   *mocks.Logger
	progress *bytes.Buffer
	closed   []string
	orch     *Orchestrator
}

func newFixture(debug bool) *fixture {
	f := &fixture{
		device:   &mocks.HWDevice{},
		pp:       &mocks.Preprocessor{},
		encoder:  &mocks.VideoEncoder{Delay: 2},
		sink:     mocks.NewDebugSink(debug),
		logger:   mocks.NewLogger(),
		progress: &bytes.Buffer{},
	}
	f.device.CloseFunc = func() error { f.closed = append(f.closed, "device"); return nil }
	f.pp.CloseFunc = func() error { f.closed = append(f.closed, "preprocessor"); return nil }
	f.encoder.CloseFunc = func() error { f.closed = append(f.closed, "encoder"); return nil }

	factory := func(deviceOpen bool) (ports.VideoEncoder, EncoderInfo, error) {
		if deviceOpen {
			return f.encoder, EncoderInfo{Backend: "vpe", Encoder: "h264enc_vpe"}, nil
		}
		return f.encoder, EncoderInfo{Backend: "ffmpeg", Encoder: "libx264", Fallback: true}, nil
	}
	f.orch = New(f.device, f.pp, factory, f.sink, f.logger, f.progress)

	// Every call advances the clock by 10ms.
	now := time.Unix(0, 0)
	f.orch.SetClock(func() time.Time {
		now = now.Add(10 * time.Millisecond)
		return now
	})
	return f
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InputPath = "input.yuv"
	cfg.OutputPath = "output.h264"
	cfg.Width = 16
	cfg.Height = 8
	cfg.PoolDepth = 4
	return cfg
}

func testReader(count int) *mocks.FrameReader {
	return &mocks.FrameReader{Width: 16, Height: 8, Format: ports.PixelFormatYUV420P, Count: count}
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture(false)
	writer := &mocks.PacketWriter{}

	result, err := f.orch.Run(context.Background(), testConfig(), testReader(5), writer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.device.Opts.Path != "/dev/transcoder0" || f.device.Opts.LogLevel != 7 {
		t.Errorf("device opened with unexpected options %+v", f.device.Opts)
	}
	if f.pp.Opts.Width != 16 || f.pp.Opts.NbOutputs != 1 {
		t.Errorf("preprocessor initialized with unexpected options %+v", f.pp.Opts)
	}
	if f.encoder.InitCalls != 1 || f.encoder.Config.Width != 16 {
		t.Errorf("encoder not initialized lazily: %d calls, %+v", f.encoder.InitCalls, f.encoder.Config)
	}
	if len(writer.Packets) != 5 {
		t.Errorf("expected 5 packets, got %d", len(writer.Packets))
	}

	if result.FramesIn != 5 || result.FramesOut != 5 || result.Packets != 5 {
		t.Errorf("unexpected counters %+v", result)
	}
	if result.Bytes != 500 {
		t.Errorf("expected 500 bytes, got %d", result.Bytes)
	}
	if !result.DeviceOpen || result.Backend != "vpe" || result.Fallback {
		t.Errorf("unexpected backend %+v", result)
	}
	if result.MaxLatency <= 0 {
		t.Errorf("expected latency to be measured, got %v", result.MaxLatency)
	}
	if result.PoolDepth != 4 {
		t.Errorf("expected pool depth 4, got %d", result.PoolDepth)
	}

	want := []string{"encoder", "preprocessor", "device"}
	if strings.Join(f.closed, ",") != strings.Join(want, ",") {
		t.Errorf("expected close order %v, got %v", want, f.closed)
	}
	if !strings.Contains(f.progress.String(), "frame     5") {
		t.Errorf("expected final progress line, got %q", f.progress.String())
	}
}

func TestOrchestrator_Run_ReportsEncoderChosenAtInit(t *testing.T) {
	f := newFixture(false)
	f.encoder.Selected = "libopenh264"

	result, err := f.orch.Run(context.Background(), testConfig(), testReader(2), &mocks.PacketWriter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Encoder != "libopenh264" {
		t.Errorf("expected encoder chosen at init, got %q", result.Encoder)
	}

	f = newFixture(false)
	result, _ = f.orch.Run(context.Background(), testConfig(), testReader(2), &mocks.PacketWriter{})
	if result.Encoder != "h264enc_vpe" {
		t.Errorf("expected factory name without a selection, got %q", result.Encoder)
	}
}

func TestOrchestrator_Run_DeviceUnavailable(t *testing.T) {
	f := newFixture(false)
	f.device.OpenFunc = func(context.Context, ports.DeviceOptions) error {
		return errors.New("no such device")
	}

	result, err := f.orch.Run(context.Background(), testConfig(), testReader(2), &mocks.PacketWriter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DeviceOpen || result.Backend != "ffmpeg" || !result.Fallback {
		t.Errorf("expected software fallback, got %+v", result)
	}
	if f.device.CloseCalled {
		t.Error("a device that failed to open must not be closed")
	}
	if !f.logger.HasLevel(ports.LevelWarn) {
		t.Error("expected a warning about the device")
	}
}

func TestOrchestrator_Run_DeviceRequired(t *testing.T) {
	f := newFixture(false)
	f.device.OpenFunc = func(context.Context, ports.DeviceOptions) error {
		return errors.New("no such device")
	}
	cfg := testConfig()
	cfg.RequireDevice = true

	if _, err := f.orch.Run(context.Background(), cfg, testReader(2), &mocks.PacketWriter{}); err == nil {
		t.Fatal("expected error")
	}
	if f.pp.InitCalled {
		t.Error("preprocessor should not be initialized without the device")
	}
}

func TestOrchestrator_Run_EncoderFailureClosesEverything(t *testing.T) {
	f := newFixture(false)
	failure := errors.New("encoder exploded")
	f.encoder.PutFrameFunc = func(frame *ports.Frame) error {
		if frame != nil && frame.Pts == 2 {
			return failure
		}
		return nil
	}

	result, err := f.orch.Run(context.Background(), testConfig(), testReader(5), &mocks.PacketWriter{})
	if !errors.Is(err, failure) {
		t.Fatalf("expected encoder failure, got %v", err)
	}
	if result.FramesOut != 2 {
		t.Errorf("expected 2 frames out before failure, got %d", result.FramesOut)
	}
	want := []string{"encoder", "preprocessor", "device"}
	if strings.Join(f.closed, ",") != strings.Join(want, ",") {
		t.Errorf("expected close order %v, got %v", want, f.closed)
	}
}

func TestOrchestrator_Run_PreprocessorInitFailure(t *testing.T) {
	f := newFixture(false)
	f.pp.InitFunc = func(ports.PPOptions) error { return errors.New("bad geometry") }

	if _, err := f.orch.Run(context.Background(), testConfig(), testReader(1), &mocks.PacketWriter{}); err == nil {
		t.Fatal("expected error")
	}
	if strings.Join(f.closed, ",") != "device" {
		t.Errorf("expected only the device to be closed, got %v", f.closed)
	}
}

func TestOrchestrator_Run_CloseErrorIsReported(t *testing.T) {
	f := newFixture(false)
	f.device.CloseFunc = func() error { return errors.New("busy") }

	_, err := f.orch.Run(context.Background(), testConfig(), testReader(1), &mocks.PacketWriter{})
	if err == nil || !strings.Contains(err.Error(), "close device") {
		t.Errorf("expected close error, got %v", err)
	}
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	f := newFixture(false)
	ctx, cancel := context.WithCancel(context.Background())
	reader := testReader(10)
	reader.ReadFunc = func(index int, frame *ports.Frame) error {
		if index == 3 {
			cancel()
		}
		return nil
	}

	result, err := f.orch.Run(ctx, testConfig(), reader, &mocks.PacketWriter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !result.Interrupted || result.FramesIn != 4 {
		t.Errorf("expected interruption after 4 frames, got %+v", result)
	}
	if !f.device.CloseCalled {
		t.Error("device must be closed after interruption")
	}
}

func TestOrchestrator_Run_DebugSink(t *testing.T) {
	f := newFixture(true)

	if _, err := f.orch.Run(context.Background(), testConfig(), testReader(3), &mocks.PacketWriter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(f.sink.ConfigJSON, []byte(`"InputPath": "input.yuv"`)) {
		t.Errorf("unexpected config JSON %s", f.sink.ConfigJSON)
	}
	if len(f.sink.Frames) != 3 {
		t.Errorf("expected 3 saved frames, got %d", len(f.sink.Frames))
	}
	if lines := bytes.Count(f.sink.LatencyCSV, []byte("\n")); lines != 4 {
		t.Errorf("expected header and 3 latency rows, got %d lines", lines)
	}
}

func TestOrchestrator_Run_PoolExhausted(t *testing.T) {
	f := newFixture(false)
	f.encoder.Delay = 10
	cfg := testConfig()
	cfg.PoolDepth = 3

	if _, err := f.orch.Run(context.Background(), cfg, testReader(5), &mocks.PacketWriter{}); err == nil {
		t.Fatal("expected pool exhaustion")
	}
}

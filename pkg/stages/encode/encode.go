// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/user/vpetranscode/pkg/framepool"
	"github.com/user/vpetranscode/pkg/pipeline"
	"github.com/user/vpetranscode/pkg/ports"
	"github.com/user/vpetranscode/pkg/stats"
)

const (
	// InitialStreamSize is the initial capacity of the packet buffer.
	InitialStreamSize = 8 << 20

	// FlushPollInterval is the wait between two polls while draining at end of stream.
	FlushPollInterval = 500 * time.Microsecond
)

// Stage feeds preprocessed frames to the encoder and writes its packets.
//
// The encoder is initialized lazily with the geometry of the first frame,
// which is only known after preprocessing.
type Stage struct {
	encoder ports.VideoEncoder
	pool    *framepool.Pool
	writer  ports.PacketWriter
	tracker *stats.Tracker
	cfg     ports.EncoderConfig
	logger  ports.Logger

	initialized bool
	flushed     bool
	stream      []byte
}

// NewStage creates a new encode stage. cfg carries everything but the
// frame geometry.
func NewStage(encoder ports.VideoEncoder, pool *framepool.Pool, writer ports.PacketWriter, tracker *stats.Tracker, cfg ports.EncoderConfig, logger ports.Logger) *Stage {
	return &Stage{
		encoder: encoder,
		pool:    pool,
		writer:  writer,
		tracker: tracker,
		cfg:     cfg,
		logger:  logger.WithComponent("encode"),
	}
}

// Execute encodes one frame and writes every packet that is ready.
// A nil frame flushes the encoder and drains it to the end of stream.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	if input.Frame == nil {
		return s.flush(ctx)
	}

	var result pipeline.EncodeResult
	if s.flushed {
		return result, errors.New("encode: frame after end of stream")
	}

	if !s.initialized {
		cfg := s.cfg
		cfg.Width = input.Frame.Width
		cfg.Height = input.Frame.Height
		cfg.Format = input.Frame.Format
		if err := s.encoder.Init(cfg); err != nil {
			return result, fmt.Errorf("init encoder: %w", err)
		}
		s.initialized = true
		s.stream = make([]byte, InitialStreamSize)
		s.logger.Debug("Encoder initialized for %dx%d %s", cfg.Width, cfg.Height, cfg.Format)
	}

	if err := s.reclaim(); err != nil {
		return result, err
	}
	if err := s.encoder.PutFrame(input.Frame); err != nil {
		return result, fmt.Errorf("put frame %d: %w", input.Frame.Pts, err)
	}
	if err := s.reclaim(); err != nil {
		return result, err
	}

	err := s.drain(&result)
	return result, err
}

// reclaim returns every frame the encoder released to the pool.
func (s *Stage) reclaim() error {
	for {
		f, err := s.encoder.ConsumedFrame()
		if err != nil {
			return fmt.Errorf("consumed frame: %w", err)
		}
		if f == nil {
			return nil
		}
		if err := s.pool.Release(f); err != nil {
			return err
		}
	}
}

// drain writes packets until the encoder has none ready.
func (s *Stage) drain(result *pipeline.EncodeResult) error {
	for {
		size, err := s.encoder.PacketSize()
		if errors.Is(err, ports.ErrAgain) {
			return nil
		}
		if err == io.EOF {
			result.Drained = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("packet size: %w", err)
		}

		if size > len(s.stream) {
			grown := (size + 0xFFFF) &^ 0xFFFF
			s.logger.Debug("Growing stream buffer from %d to %d bytes", len(s.stream), grown)
			s.stream = make([]byte, grown)
		}

		pkt := ports.Packet{Data: s.stream}
		if err := s.encoder.GetPacket(&pkt); err != nil {
			return fmt.Errorf("get packet: %w", err)
		}
		if err := s.writer.WritePacket(&pkt); err != nil {
			return fmt.Errorf("write packet %d: %w", pkt.Pts, err)
		}
		s.tracker.FrameOut()
		result.Packets++
		result.Bytes += int64(pkt.Size)
	}
}

// flush signals end of stream and polls until the encoder is drained.
func (s *Stage) flush(ctx context.Context) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{Drained: true}
	if !s.initialized || s.flushed {
		return result, nil
	}
	s.flushed = true

	if err := s.encoder.PutFrame(nil); err != nil {
		return result, fmt.Errorf("put end of stream: %w", err)
	}

	result.Drained = false
	for !result.Drained {
		if err := s.reclaim(); err != nil {
			return result, err
		}
		packets := result.Packets
		if err := s.drain(&result); err != nil {
			return result, err
		}
		if result.Drained || result.Packets > packets {
			continue
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(FlushPollInterval):
		}
	}

	s.logger.Debug("Encoder drained, %d frames still in flight", s.pool.InFlight())
	return result, s.reclaim()
}

// Package preprocess implements the scaling / format conversion stage.
package preprocess

import (
	"context"
	"fmt"

	"github.com/user/vpetranscode/pkg/framepool"
	"github.com/user/vpetranscode/pkg/pipeline"
	"github.com/user/vpetranscode/pkg/ports"
)

// Stage runs the preprocessor into a free frame pool slot.
type Stage struct {
	pp     ports.Preprocessor
	pool   *framepool.Pool
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new preprocess stage.
func NewStage(pp ports.Preprocessor, pool *framepool.Pool, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		pp:     pp,
		pool:   pool,
		sink:   sink,
		logger: logger.WithComponent("preprocess"),
	}
}

// Execute preprocesses one frame. The returned frame stays in flight until
// the encoder hands it back.
func (s *Stage) Execute(ctx context.Context, input pipeline.PreprocessInput) (pipeline.PreprocessResult, error) {
	result := pipeline.PreprocessResult{Slot: -1}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	idx, out, err := s.pool.Acquire()
	if err != nil {
		return result, fmt.Errorf("frame %d: %w (%d in flight)", input.Index, err, s.pool.InFlight())
	}

	if err := s.pp.Process(input.Frame, out); err != nil {
		return result, fmt.Errorf("preprocess frame %d: %w", input.Index, err)
	}
	out.Slot = idx

	if err := s.pool.MarkInFlight(idx); err != nil {
		return result, err
	}
	s.logger.Debug("Frame %d preprocessed into slot %d", input.Index, idx)

	if s.sink.Enabled() {
		if err := s.sink.SavePreprocessedFrame(input.Index, out); err != nil {
			s.logger.Warn("Failed to save preprocessed frame %d: %v", input.Index, err)
		}
	}

	result.Frame = out
	result.Slot = idx
	return result, nil
}

package pipeline

import (
	"github.com/user/vpetranscode/pkg/ports"
)

// =============================================================================
// Preprocess Stage Types
// =============================================================================

// PreprocessInput is one frame read from the input.
type PreprocessInput struct {
	Index int          // Input frame number, starting at 0
	Frame *ports.Frame // Raw frame; reused by the reader after the stage returns
}

// PreprocessResult is the preprocessed frame held in a pool slot.
type PreprocessResult struct {
	Frame *ports.Frame // Owned by the frame pool until the encoder consumes it
	Slot  int
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput is one preprocessed frame, or end of stream when Frame is nil.
type EncodeInput struct {
	Frame *ports.Frame
}

// EncodeResult reports what an encode step wrote.
type EncodeResult struct {
	Packets int   // Packets written by this step
	Bytes   int64 // Payload bytes written by this step
	Drained bool  // The encoder reported end of stream
}

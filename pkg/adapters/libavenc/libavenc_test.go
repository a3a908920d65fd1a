package libavenc

import (
	"errors"
	"testing"

	"github.com/user/vpetranscode/pkg/adapters/logger"
	"github.com/user/vpetranscode/pkg/ports"
)

func TestCandidates(t *testing.T) {
	if got := Candidates(ports.CodecH264); got[0] != "h264enc_vpe" || got[1] != "libx264" {
		t.Errorf("unexpected h264 candidates %v", got)
	}
	if got := Candidates(ports.CodecHEVC); got[0] != "hevcenc_vpe" || got[1] != "libx265" {
		t.Errorf("unexpected hevc candidates %v", got)
	}
}

func TestOptionsOverrideCandidates(t *testing.T) {
	opts := Options{Encoders: []string{"custom"}}
	if got := opts.candidates(ports.CodecHEVC); len(got) != 1 || got[0] != "custom" {
		t.Errorf("expected override, got %v", got)
	}
}

func TestEncoder_UnavailableWithoutLibav(t *testing.T) {
	if Available() {
		t.Skip("built with libav")
	}
	e := New(Options{Logger: logger.NewNoop()})
	if err := e.Init(ports.EncoderConfig{Width: 16, Height: 16}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	var named ports.NamedEncoder = e
	if named.Name() != "" {
		t.Errorf("expected no encoder selected, got %q", named.Name())
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

package summarizer

import (
	"strings"
	"testing"
	"time"
)

func testSummary() *Summary {
	return &Summary{
		RunID:       "3f1c2a4e-0000-4000-8000-000000000001",
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Input: InputInfo{
			Path:   "clip.yuv",
			Width:  1920,
			Height: 1080,
			Format: "yuv420p",
		},
		Device: DeviceInfo{Path: "/dev/transcoder0", Open: true},
		Encoder: EncoderInfo{
			Codec:   "hevc",
			Backend: "vpe",
			Name:    "hevcenc_vpe",
			Preset:  "fast",
			BitRate: 1000000,
			Params:  "intra_pic_rate=100:gop_size=1",
		},
		Output: OutputInfo{
			Path:    "clip.hevc",
			Packets: 300,
			Bytes:   1024 * 1024,
		},
		Performance: PerformanceInfo{
			FramesIn:   300,
			FramesOut:  300,
			Elapsed:    10 * time.Second,
			FPS:        30,
			MinLatency: 12 * time.Millisecond,
			AvgLatency: 20 * time.Millisecond,
			MaxLatency: 45 * time.Millisecond,
			PoolDepth:  78,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# Transcode Summary",
		"3f1c2a4e-0000-4000-8000-000000000001",
		"2024-01-15T10:30:00Z",
		"clip.yuv",
		"1920x1080",
		"hevcenc_vpe",
		"| Bit Rate | 1000000 bps |",
		"`intra_pic_rate=100:gop_size=1`",
		"1.00 MB",
		"| Frames Out | 300 |",
		"| FPS | 30.0 |",
		"| Frames In Flight (max) | 78 |",
		"12 / 20 / 45 ms",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "fallback") || strings.Contains(result, "Interrupted") {
		t.Error("unexpected fallback or interruption marker")
	}
}

func TestMarkdownFormatter_Format_FallbackAndDiscard(t *testing.T) {
	s := testSummary()
	s.Device.Open = false
	s.Encoder.Backend = "ffmpeg"
	s.Encoder.Fallback = true
	s.Output.Path = ""
	s.Performance.Interrupted = true

	result := NewMarkdownFormatter().Format(s)

	for _, check := range []string{"not opened", "ffmpeg (fallback)", "discarded", "Interrupted"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_Format_NoFrames(t *testing.T) {
	s := testSummary()
	s.Performance = PerformanceInfo{}

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "N/A") {
		t.Error("expected N/A latency without output frames")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Transcode Summary": "トランスコードサマリー",
			"Performance":       "パフォーマンス",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(testSummary())

	if !strings.Contains(result, "トランスコードサマリー") {
		t.Error("expected translated title")
	}
	if !strings.Contains(result, "パフォーマンス") {
		t.Error("expected translated section")
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(testSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

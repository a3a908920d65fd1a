package filesink

import (
	"path/filepath"
	"testing"

	"github.com/user/vpetranscode/pkg/mocks"
	"github.com/user/vpetranscode/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func testFrame() *ports.Frame {
	f := &ports.Frame{}
	f.Alloc(4, 2, ports.PixelFormatNV12)
	for i := range f.Data[0] {
		f.Data[0][i] = 0x10
	}
	for i := range f.Data[1] {
		f.Data[1][i] = 0x80
	}
	return f
}

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), 0)

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveConfigJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, 0)

	data := []byte(`{"codec": "h264enc"}`)
	if err := sink.SaveConfigJSON(data); err != nil {
		t.Fatalf("SaveConfigJSON failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "config.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SavePreprocessedFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, 0)

	if err := sink.SavePreprocessedFrame(3, testFrame()); err != nil {
		t.Fatalf("SavePreprocessedFrame failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "frames", "frame-0003-4x2.nv12")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if len(saved) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(saved))
	}
	if saved[0] != 0x10 || saved[8] != 0x80 {
		t.Errorf("planes not concatenated in order: %v", saved)
	}
}

func TestSink_FrameLimit(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, 2)

	for i := 0; i < 5; i++ {
		if err := sink.SavePreprocessedFrame(i, testFrame()); err != nil {
			t.Fatalf("SavePreprocessedFrame %d failed: %v", i, err)
		}
	}

	if got := len(fs.GetAllFiles()); got != 2 {
		t.Errorf("expected 2 files, got %d", got)
	}
}

func TestSink_SaveLatencyCSV(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, 0)

	if err := sink.SaveLatencyCSV([]byte("frame,in_us,out_us,latency_us\n")); err != nil {
		t.Fatalf("SaveLatencyCSV failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "latency.csv")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
}

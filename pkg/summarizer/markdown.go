package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Transcode Summary"))
	fmt.Fprintf(&b, "- %s: `%s`\n", t("Run ID"), s.RunID)
	fmt.Fprintf(&b, "- %s: %s\n\n", t("Generated At"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", t("Input"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("File"), s.Input.Path)
	fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Size"), s.Input.Width, s.Input.Height)
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Pixel Format"), s.Input.Format)

	fmt.Fprintf(&b, "## %s\n\n", t("Encoder"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	device := s.Device.Path
	if !s.Device.Open {
		device += " (" + t("not opened") + ")"
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Device"), device)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Codec"), s.Encoder.Codec)
	backend := s.Encoder.Backend
	if s.Encoder.Fallback {
		backend += " (" + t("fallback") + ")"
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Backend"), backend)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Encoder Name"), s.Encoder.Name)
	if s.Encoder.Preset != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Preset"), s.Encoder.Preset)
	}
	if s.Encoder.BitRate > 0 {
		fmt.Fprintf(&b, "| %s | %d bps |\n", t("Bit Rate"), s.Encoder.BitRate)
	}
	if s.Encoder.Params != "" {
		fmt.Fprintf(&b, "| %s | `%s` |\n", t("Encoder Params"), s.Encoder.Params)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	path := s.Output.Path
	if path == "" {
		path = t("discarded")
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("File"), path)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Packets"), s.Output.Packets)
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Bitstream Size"), formatBytes(s.Output.Bytes))

	p := s.Performance
	fmt.Fprintf(&b, "## %s\n\n", t("Performance"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames In"), p.FramesIn)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames Out"), p.FramesOut)
	fmt.Fprintf(&b, "| %s | %d ms |\n", t("Elapsed"), p.Elapsed.Milliseconds())
	fmt.Fprintf(&b, "| %s | %.1f |\n", t("FPS"), p.FPS)
	if p.PoolDepth > 0 {
		fmt.Fprintf(&b, "| %s | %d |\n", t("Frames In Flight (max)"), p.PoolDepth)
	}
	if p.FramesOut > 0 {
		fmt.Fprintf(&b, "| %s | %d / %d / %d ms |\n", t("Latency min / avg / max"),
			p.MinLatency.Milliseconds(), p.AvgLatency.Milliseconds(), p.MaxLatency.Milliseconds())
	} else {
		fmt.Fprintf(&b, "| %s | N/A |\n", t("Latency min / avg / max"))
	}
	if p.Interrupted {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Status"), t("Interrupted"))
	}

	if f.version != "" {
		fmt.Fprintf(&b, "\n---\n\nvpetranscode %s\n", f.version)
	}
	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

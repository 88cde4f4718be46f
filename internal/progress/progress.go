// Package progress renders analysis progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/panbanda/accessorlint/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	w     io.Writer
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, w: w}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, w: w}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.bar.Add(1)
}

// Write advances the spinner once per write so that streamed output, such as
// git clone progress, keeps it moving. The written text is discarded.
func (t *Tracker) Write(p []byte) (int, error) {
	t.bar.Add(1)
	return len(p), nil
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}

// Phases shows one bar per analysis phase, switching bars whenever the
// reported phase changes.
type Phases struct {
	mu      sync.Mutex
	w       io.Writer
	phase   string
	current *Tracker
}

// NewPhases creates a phase-driven progress display writing to w.
func NewPhases(w io.Writer) *Phases {
	return &Phases{w: w}
}

// Callback returns the analyzer.ProgressFunc feeding this display.
func (p *Phases) Callback() analyzer.ProgressFunc {
	return func(phase string, _, total int, _ string) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.current == nil || phase != p.phase {
			if p.current != nil {
				p.current.FinishSuccess()
			}
			p.phase = phase
			p.current = NewTracker(p.w, phaseLabel(phase), total)
		}
		p.current.Tick()
	}
}

// Phase returns the phase currently displayed.
func (p *Phases) Phase() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Finish clears the active bar.
func (p *Phases) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.FinishSuccess()
		p.current = nil
	}
}

func phaseLabel(phase string) string {
	switch phase {
	case "parse":
		return "Parsing files"
	case "check":
		return "Checking accessors"
	default:
		return phase
	}
}

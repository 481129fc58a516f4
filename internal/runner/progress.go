package runner

import (
	"github.com/schollz/progressbar/v3"
)

// progress wraps the progress bar so disabled displays are nil-safe.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(total int, disabled bool) *progress {
	if disabled || total == 0 {
		return &progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]Scanning...[reset]"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &progress{bar: bar}
}

// Add advances the bar by n processed candidates.
func (p *progress) Add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

// Clear erases the bar line so a result can be printed cleanly; the bar
// redraws on the next Add.
func (p *progress) Clear() {
	if p.bar != nil {
		_ = p.bar.Clear()
	}
}

// Finish completes the bar display.
func (p *progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

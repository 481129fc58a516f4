package output

import (
	"time"

	"github.com/apifuzz/apifuzz/internal/scanner"
)

// Stats holds aggregate scan statistics for the footer.
type Stats struct {
	TotalCandidates int
	Skipped         int // rejected by the safety filter
	Findings        int
	Errors          int
	Duration        time.Duration
	RequestsPerSec  float64
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteResult(f *scanner.Finding) error
	WriteFooter(stats Stats) error
	Close() error
}

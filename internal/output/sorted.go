package output

import (
	"sort"

	"github.com/apifuzz/apifuzz/internal/scanner"
)

// SortedWriter buffers findings and replays them sorted by a field when
// WriteFooter is called. It wraps any other Writer.
type SortedWriter struct {
	inner    Writer
	sortBy   string
	findings []*scanner.Finding
}

// NewSortedWriter wraps inner and buffers findings for sorted replay.
func NewSortedWriter(inner Writer, sortBy string) *SortedWriter {
	return &SortedWriter{inner: inner, sortBy: sortBy}
}

func (w *SortedWriter) WriteHeader() error {
	return w.inner.WriteHeader()
}

func (w *SortedWriter) WriteResult(f *scanner.Finding) error {
	w.findings = append(w.findings, f)
	return nil
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	sort.SliceStable(w.findings, func(i, j int) bool {
		switch w.sortBy {
		case "status":
			return w.findings[i].StatusCode < w.findings[j].StatusCode
		case "size":
			return w.findings[i].ContentLength < w.findings[j].ContentLength
		case "endpoint":
			return w.findings[i].Endpoint < w.findings[j].Endpoint
		default:
			return false
		}
	})
	for _, f := range w.findings {
		if err := w.inner.WriteResult(f); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

func (w *SortedWriter) Close() error {
	return w.inner.Close()
}

package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apifuzz/apifuzz/internal/scanner"
	"github.com/fatih/color"
)

// TextWriter renders findings as human-readable blocks: endpoint, status,
// and the decoded body (or a not-JSON marker).
type TextWriter struct {
	w       io.Writer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty,
// stdout is used.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		// ANSI codes don't belong in files.
		noColor = true
	}
	return &TextWriter{w: w, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader() error { return nil }

func (t *TextWriter) WriteResult(f *scanner.Finding) error {
	marker := t.colorForStatus(f.StatusCode)("[+]")
	if _, err := fmt.Fprintf(t.w, "\n%s Working endpoint: %s\n    Status code: %d\n", marker, f.Endpoint, f.StatusCode); err != nil {
		return err
	}
	if f.Body != nil {
		_, err := fmt.Fprintf(t.w, "    Response data: %v\n", f.Body)
		return err
	}
	_, err := fmt.Fprintln(t.w, "    Response is not in JSON format.")
	return err
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(os.Stderr,
		"\nCompleted: %d candidates | Findings: %d | Skipped: %d | Errors: %d | Duration: %s | %.1f req/s\n",
		stats.TotalCandidates,
		stats.Findings,
		stats.Skipped,
		stats.Errors,
		stats.Duration.Round(time.Millisecond),
		stats.RequestsPerSec,
	)
	return err
}

func (t *TextWriter) Close() error {
	if closer, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		return closer.Close()
	}
	return nil
}

func (t *TextWriter) colorForStatus(code int) func(a ...interface{}) string {
	if t.noColor {
		return fmt.Sprint
	}
	switch {
	case code >= 200 && code < 300:
		return color.New(color.FgGreen).SprintFunc()
	case code >= 300 && code < 400:
		return color.New(color.FgCyan).SprintFunc()
	case code >= 400 && code < 500:
		return color.New(color.FgYellow).SprintFunc()
	case code >= 500:
		return color.New(color.FgRed).SprintFunc()
	default:
		return fmt.Sprint
	}
}

package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/apifuzz/apifuzz/internal/scanner"
)

type jsonEntry struct {
	Candidate  string `json:"candidate"`
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status"`
	Size       int64  `json:"size"`
	Body       any    `json:"body,omitempty"`
}

// JSONWriter buffers findings and writes a JSON array on footer.
type JSONWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []jsonEntry
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}
	return &JSONWriter{w: w, closer: closer}, nil
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(f *scanner.Finding) error {
	j.entries = append(j.entries, jsonEntry{
		Candidate:  f.Candidate,
		Endpoint:   f.Endpoint,
		StatusCode: f.StatusCode,
		Size:       f.ContentLength,
		Body:       f.Body,
	})
	return nil
}

func (j *JSONWriter) WriteFooter(stats Stats) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if j.entries == nil {
		j.entries = []jsonEntry{}
	}
	return enc.Encode(j.entries)
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

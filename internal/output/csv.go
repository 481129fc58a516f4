package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/apifuzz/apifuzz/internal/scanner"
)

// CSVWriter writes findings as CSV rows. The body column holds the
// compact JSON re-encoding of the decoded payload, empty when not JSON.
type CSVWriter struct {
	csv    *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
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
	return &CSVWriter{csv: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader() error {
	return c.csv.Write([]string{"candidate", "endpoint", "status", "size", "body"})
}

func (c *CSVWriter) WriteResult(f *scanner.Finding) error {
	body := ""
	if f.Body != nil {
		if data, err := json.Marshal(f.Body); err == nil {
			body = string(data)
		}
	}
	return c.csv.Write([]string{
		f.Candidate,
		f.Endpoint,
		strconv.Itoa(f.StatusCode),
		strconv.FormatInt(f.ContentLength, 10),
		body,
	})
}

func (c *CSVWriter) WriteFooter(stats Stats) error {
	c.csv.Flush()
	return c.csv.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// SupportedMethods is the set of HTTP methods the prober will issue.
// Anything else is logged and the candidate is classified as absent.
var SupportedMethods = map[string]struct{}{
	"GET":     {},
	"POST":    {},
	"PUT":     {},
	"DELETE":  {},
	"PATCH":   {},
	"HEAD":    {},
	"OPTIONS": {},
}

// Options holds all configuration for an apifuzz scan. It is built once
// from the CLI and never mutated afterwards.
type Options struct {
	// Target
	URL          string
	WordlistPath string
	Method       string

	// Request
	Timeout  time.Duration
	Insecure bool

	// Headers
	Headers       []string // raw "Key: Value" pairs
	Token         string
	TokenType     string
	APIKey        string
	RandomAgent   bool
	BypassHeaders bool

	// Execution
	Workers   int     // >1 enables the worker pool
	RateLimit float64 // max requests/second in sequential mode, 0 = unbounded

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv"
	SortBy       string // "", "status", "endpoint", "size"
	OnResultCmd  string
	NoProgress   bool
	Quiet        bool
	Verbose      bool
	NoColor      bool
}

// Validate checks the options before any network activity. Violations are
// configuration errors and abort the scan.
func (o *Options) Validate() error {
	if !strings.HasPrefix(o.URL, "http://") && !strings.HasPrefix(o.URL, "https://") {
		return fmt.Errorf("target URL must start with http:// or https://, got %q", o.URL)
	}
	if o.WordlistPath == "" {
		return fmt.Errorf("wordlist path required")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", o.Workers)
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %g", o.RateLimit)
	}
	if o.Workers > 1 && o.RateLimit > 0 {
		return fmt.Errorf("--workers and --rate-limit are mutually exclusive")
	}
	switch o.OutputFormat {
	case "", "text", "json", "csv":
	default:
		return fmt.Errorf("--format must be one of: text, json, csv")
	}
	switch o.SortBy {
	case "", "status", "endpoint", "size":
	default:
		return fmt.Errorf("--sort must be one of: status, endpoint, size")
	}
	return nil
}

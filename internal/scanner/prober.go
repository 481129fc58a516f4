package scanner

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apifuzz/apifuzz/internal/config"
	"github.com/apifuzz/apifuzz/internal/headers"
	"github.com/apifuzz/apifuzz/internal/logging"
)

const (
	// maxRetries bounds the retry state machine: one initial attempt plus
	// one retry. Short bounded scans don't warrant exponential policies.
	maxRetries = 1

	// defaultBackoff is slept before retrying after an HTTP 429.
	defaultBackoff = 2 * time.Second
)

// Prober issues a single HTTP request per candidate against the target
// and classifies the response. Safe for concurrent use.
type Prober struct {
	client   *http.Client
	base     *url.URL
	method   string
	composer *headers.Composer
	static   http.Header   // composed once when no per-request randomization
	backoff  time.Duration // 429 retry backoff, shortened in tests
}

// NewProber builds a Prober from scan options. The HTTP client is created
// once and shared by all workers.
func NewProber(opts *config.Options, composer *headers.Composer) (*Prober, error) {
	base, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", opts.URL, err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure},
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConns:        workers,
		MaxIdleConnsPerHost: workers,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		// Redirects are findings in their own right, never followed.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	return &Prober{
		client:   client,
		base:     base,
		method:   method,
		composer: composer,
		static:   composer.Compose(),
		backoff:  defaultBackoff,
	}, nil
}

// Probe resolves candidate against the base URL, issues the request, and
// classifies the outcome. A nil Finding with nil error means the endpoint
// behaves as if the route does not exist. A non-nil error is an unexpected
// local failure the caller should log and discard.
func (p *Prober) Probe(ctx context.Context, candidate string) (*Finding, error) {
	if _, ok := config.SupportedMethods[p.method]; !ok {
		logging.Errorf("unsupported HTTP method: %s", p.method)
		return nil, nil
	}

	ref, err := url.Parse(candidate)
	if err != nil {
		return nil, fmt.Errorf("resolving candidate %q: %w", candidate, err)
	}
	endpoint := p.base.ResolveReference(ref).String()

	hdrs := p.static
	if p.composer.Randomizes() {
		hdrs = p.composer.Compose()
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		finding, retry, err := p.attempt(ctx, endpoint, candidate, hdrs)
		if err != nil {
			return nil, err
		}
		if !retry {
			return finding, nil
		}
	}
	// Retries exhausted.
	return nil, nil
}

// attempt performs one request. retry=true asks the caller to re-enter the
// state machine; the backoff (if any) has already been applied.
func (p *Prober) attempt(ctx context.Context, endpoint, candidate string, hdrs http.Header) (finding *Finding, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, p.method, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header = hdrs.Clone()

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if retryableTransportError(err) {
			logging.Debugf("transport error for %s: %v, retrying", endpoint, err)
			return nil, true, nil
		}
		logging.Debugf("request error for %s: %v, skipping", endpoint, err)
		return nil, false, nil
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		logging.Warnf("rate limit detected for %s, backing off %s", endpoint, p.backoff)
		select {
		case <-time.After(p.backoff):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
		return nil, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	}

	if readErr != nil {
		return nil, false, fmt.Errorf("reading response body for %s: %w", endpoint, readErr)
	}

	f := &Finding{
		Candidate:     candidate,
		Endpoint:      endpoint,
		StatusCode:    resp.StatusCode,
		ContentLength: int64(len(body)),
	}
	var decoded any
	if len(body) > 0 && json.Unmarshal(body, &decoded) == nil {
		f.Body = decoded
	}
	return f, false, nil
}

// retryableTransportError reports whether a request error is worth one
// immediate retry: timeouts and connection-level failures. Anything else
// (malformed responses, protocol errors) is terminal.
func retryableTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

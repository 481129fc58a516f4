package headers

import (
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"

	"github.com/apifuzz/apifuzz/internal/logging"
)

// userAgents is the pool drawn from when --random-agent is enabled.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36",
}

// referers includes the empty string: some requests carry no referer at all.
var referers = []string{
	"",
	"https://www.google.com/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
	"https://search.yahoo.com/",
}

// bypassPool maps IP/host-spoofing header names to their candidate values.
// Used for access-control bypass testing when --bypass-headers is enabled.
var bypassPool = map[string][]string{
	"X-Forwarded-For":  {"127.0.0.1", "10.0.0.1", "192.168.0.1", "172.16.0.1", "127.0.0.1, 10.0.0.1"},
	"X-Real-IP":        {"127.0.0.1", "10.0.0.1"},
	"X-Client-IP":      {"127.0.0.1", "192.168.0.1"},
	"True-Client-IP":   {"127.0.0.1"},
	"X-Originating-IP": {"127.0.0.1"},
	"X-Remote-IP":      {"127.0.0.1"},
	"X-Remote-Addr":    {"127.0.0.1"},
	"X-Forwarded-Host": {"127.0.0.1", "localhost"},
}

// maxBypassHeaders bounds how many spoofing headers one request carries.
const maxBypassHeaders = 3

// Options configures header composition for a scan.
type Options struct {
	Token       string
	TokenType   string
	APIKey      string
	Custom      []string // raw "Key: Value" pairs from the CLI
	RandomAgent bool
	Bypass      bool
}

// Composer builds the header set for each probe. The static base is
// computed once; randomized headers are layered on a fresh copy per call
// so concurrent probes never observe each other's values.
type Composer struct {
	static      http.Header
	randomAgent bool
	bypass      bool
}

// NewComposer builds the static header base. Malformed custom pairs
// (missing the colon separator) are logged and dropped, not fatal.
func NewComposer(opts Options) *Composer {
	static := make(http.Header)
	if opts.Token != "" {
		tokenType := opts.TokenType
		if tokenType == "" {
			tokenType = "Bearer"
		}
		static.Set("Authorization", fmt.Sprintf("%s %s", tokenType, opts.Token))
	}
	if opts.APIKey != "" {
		static.Set("X-API-Key", opts.APIKey)
	}
	for _, h := range opts.Custom {
		key, val, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			logging.Warnf("ignoring malformed header %q, expected 'Key: Value'", h)
			continue
		}
		static.Set(strings.TrimSpace(key), strings.TrimSpace(val))
	}
	return &Composer{
		static:      static,
		randomAgent: opts.RandomAgent,
		bypass:      opts.Bypass,
	}
}

// Randomizes reports whether headers must be recomputed per request.
func (c *Composer) Randomizes() bool {
	return c.randomAgent || c.bypass
}

// Compose returns the header set for one request. The returned map is a
// fresh copy; the static base is never mutated.
func (c *Composer) Compose() http.Header {
	h := c.static.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if c.randomAgent {
		h.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
		if ref := referers[rand.Intn(len(referers))]; ref != "" {
			h.Set("Referer", ref)
		} else {
			h.Del("Referer")
		}
	}
	if c.bypass {
		names := make([]string, 0, len(bypassPool))
		for name := range bypassPool {
			names = append(names, name)
		}
		sort.Strings(names)
		rand.Shuffle(len(names), func(i, j int) {
			names[i], names[j] = names[j], names[i]
		})
		n := maxBypassHeaders
		if len(names) < n {
			n = len(names)
		}
		for _, name := range names[:n] {
			values := bypassPool[name]
			h.Set(name, values[rand.Intn(len(values))])
		}
	}
	return h
}

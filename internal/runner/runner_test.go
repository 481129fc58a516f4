package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apifuzz/apifuzz/internal/config"
	"github.com/apifuzz/apifuzz/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func writeWordlist(t *testing.T, words []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	if err := os.WriteFile(path, []byte(strings.Join(words, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOpts(t *testing.T, serverURL, wordlistPath string) *config.Options {
	t.Helper()
	return &config.Options{
		URL:          serverURL + "/",
		WordlistPath: wordlistPath,
		Method:       "GET",
		Timeout:      5 * time.Second,
		Workers:      1,
		OutputFormat: "json",
		OutputFile:   filepath.Join(t.TempDir(), "output.json"),
		Quiet:        true,
		NoProgress:   true,
		NoColor:      true,
	}
}

type resultEntry struct {
	Candidate  string `json:"candidate"`
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status"`
	Body       any    `json:"body"`
}

func readResults(t *testing.T, path string) []resultEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []resultEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing output %s: %v", data, err)
	}
	return entries
}

func TestTraversalCandidateIsNeverProbed(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/users" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"count":2}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	wordlist := writeWordlist(t, []string{"admin", "../etc/passwd", "users", "login"})
	opts := testOpts(t, srv.URL, wordlist)

	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	entries := readResults(t, opts.OutputFile)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 finding, got %d: %+v", len(entries), entries)
	}
	if entries[0].Candidate != "users" {
		t.Errorf("finding candidate = %q, want users", entries[0].Candidate)
	}
	body, ok := entries[0].Body.(map[string]any)
	if !ok || body["count"] != float64(2) {
		t.Errorf("JSON body not preserved: %#v", entries[0].Body)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, p := range paths {
		if strings.Contains(p, "passwd") {
			t.Errorf("traversal candidate reached the server: %q", p)
		}
	}
	if len(paths) != 3 {
		t.Errorf("server saw %d requests, want 3 (traversal skipped)", len(paths))
	}
}

func TestWorkerPoolCollectsExactFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "0") {
			fmt.Fprint(w, `{"ok":true}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	words := make([]string, 100)
	for i := range words {
		words[i] = fmt.Sprintf("route%d", i+1)
	}
	wordlist := writeWordlist(t, words)
	opts := testOpts(t, srv.URL, wordlist)
	opts.Workers = 5

	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	entries := readResults(t, opts.OutputFile)
	if len(entries) != 10 {
		t.Fatalf("expected exactly 10 findings, got %d", len(entries))
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Candidate] {
			t.Errorf("duplicate finding for %q", e.Candidate)
		}
		seen[e.Candidate] = true
		if !strings.HasSuffix(e.Candidate, "0") {
			t.Errorf("unexpected finding %q", e.Candidate)
		}
	}
}

func TestSequentialRateLimitPreservesOrderAndPaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	words := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	wordlist := writeWordlist(t, words)
	opts := testOpts(t, srv.URL, wordlist)
	opts.RateLimit = 10 // 100ms spacing, 4 gaps -> >= 400ms

	start := time.Now()
	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	if elapsed < 400*time.Millisecond {
		t.Errorf("5 candidates at 10 req/s took %s, want >= 400ms", elapsed)
	}

	entries := readResults(t, opts.OutputFile)
	if len(entries) != len(words) {
		t.Fatalf("expected %d findings, got %d", len(words), len(entries))
	}
	for i, e := range entries {
		if e.Candidate != words[i] {
			t.Errorf("result %d = %q, want %q (sequential order must be deterministic)", i, e.Candidate, words[i])
		}
	}
}

func TestInvalidURLSchemeFailsBeforeNetwork(t *testing.T) {
	wordlist := writeWordlist(t, []string{"admin"})
	opts := testOpts(t, "", wordlist)
	opts.URL = "ftp://example.com"

	err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("expected configuration error for non-http scheme")
	}
	if !strings.Contains(err.Error(), "http") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingWordlistIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	opts := testOpts(t, srv.URL, filepath.Join(t.TempDir(), "missing.txt"))
	if err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected error for unreadable wordlist")
	}
}

func TestWorkersAndRateLimitAreExclusive(t *testing.T) {
	wordlist := writeWordlist(t, []string{"admin"})
	opts := testOpts(t, "http://example.com", wordlist)
	opts.URL = "http://example.com"
	opts.Workers = 5
	opts.RateLimit = 2

	if err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected configuration error for workers + rate-limit")
	}
}

func TestCancellationStopsDispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	words := make([]string, 500)
	for i := range words {
		words[i] = fmt.Sprintf("route%d", i)
	}
	wordlist := writeWordlist(t, words)
	opts := testOpts(t, srv.URL, wordlist)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := Run(ctx, opts); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("cancelled scan still took %s", elapsed)
	}
}

func TestSortedJSONOutputByStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			w.WriteHeader(500)
		case "/b":
			w.WriteHeader(200)
		case "/c":
			w.WriteHeader(301)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	wordlist := writeWordlist(t, []string{"a", "b", "c"})
	opts := testOpts(t, srv.URL, wordlist)
	opts.SortBy = "status"

	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	entries := readResults(t, opts.OutputFile)
	if len(entries) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(entries))
	}
	want := []int{200, 301, 500}
	for i, e := range entries {
		if e.StatusCode != want[i] {
			t.Errorf("entry %d status = %d, want %d", i, e.StatusCode, want[i])
		}
	}
}

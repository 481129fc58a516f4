package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apifuzz/apifuzz/internal/config"
	"github.com/apifuzz/apifuzz/internal/headers"
	"github.com/apifuzz/apifuzz/internal/hook"
	"github.com/apifuzz/apifuzz/internal/logging"
	"github.com/apifuzz/apifuzz/internal/output"
	"github.com/apifuzz/apifuzz/internal/scanner"
	"github.com/apifuzz/apifuzz/internal/wordlist"
	"github.com/apifuzz/apifuzz/pkg/version"
	"github.com/fatih/color"
)

// Run executes a full scan: validate, load candidates, probe, report.
// Configuration errors are returned before any network activity; probe
// failures never abort the scan.
func Run(ctx context.Context, opts *config.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	candidates, err := wordlist.Load(opts.WordlistPath)
	if err != nil {
		return err
	}
	logging.Infof("total candidates to check: %d", len(candidates))

	composer := headers.NewComposer(headers.Options{
		Token:       opts.Token,
		TokenType:   opts.TokenType,
		APIKey:      opts.APIKey,
		Custom:      opts.Headers,
		RandomAgent: opts.RandomAgent,
		Bypass:      opts.BypassHeaders,
	})

	prober, err := scanner.NewProber(opts, composer)
	if err != nil {
		return err
	}

	out, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}
	defer out.Close()
	if err := out.WriteHeader(); err != nil {
		return err
	}

	if !opts.Quiet {
		printBanner(opts, len(candidates))
	}

	var hookRunner *hook.Runner
	if opts.OnResultCmd != "" {
		hookRunner = hook.NewRunner(opts.OnResultCmd)
	}

	pauser, cleanup := startStdinToggle(opts.Quiet)
	defer cleanup()

	bar := newProgress(len(candidates), opts.Quiet || opts.NoProgress)
	stats := output.Stats{TotalCandidates: len(candidates)}
	start := time.Now()

	var findings []*scanner.Finding
	collect := func(res scanner.ProbeResult) error {
		bar.Add(1)
		if res.Err != nil {
			stats.Errors++
			logging.Errorf("error processing %q: %v", res.Candidate, res.Err)
			return nil
		}
		if res.Finding == nil {
			return nil
		}
		findings = append(findings, res.Finding)
		bar.Clear()
		if err := out.WriteResult(res.Finding); err != nil {
			return err
		}
		if hookRunner != nil {
			hookRunner.Run(res.Finding)
		}
		return nil
	}

	if opts.Workers > 1 {
		// Bounded worker pool, completion-ordered results.
		admitted := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if !wordlist.IsSafe(c) {
				logging.Warnf("skipping potentially unsafe candidate: %q", c)
				stats.Skipped++
				bar.Add(1)
				continue
			}
			admitted = append(admitted, c)
		}
		results := scanner.RunPool(ctx, prober, admitted, scanner.PoolConfig{
			Workers: opts.Workers,
			Pauser:  pauser,
		})
		for res := range results {
			if err := collect(res); err != nil {
				bar.Finish()
				return err
			}
		}
	} else {
		// Sequential loop gated by the rate governor, deterministic order.
		governor := scanner.NewGovernor(opts.RateLimit)
		for _, c := range candidates {
			if ctx.Err() != nil {
				break
			}
			if pauser != nil {
				if err := pauser.Wait(ctx); err != nil {
					break
				}
			}
			if !wordlist.IsSafe(c) {
				logging.Warnf("skipping potentially unsafe candidate: %q", c)
				stats.Skipped++
				bar.Add(1)
				continue
			}
			if err := governor.Wait(ctx); err != nil {
				break
			}
			finding, err := prober.Probe(ctx, c)
			if ctx.Err() != nil {
				break
			}
			if err := collect(scanner.ProbeResult{Candidate: c, Finding: finding, Err: err}); err != nil {
				bar.Finish()
				return err
			}
		}
	}

	bar.Finish()

	if ctx.Err() != nil {
		logging.Warnf("scan interrupted, reporting findings collected so far")
	}
	if len(findings) > 0 {
		logging.Infof("found %d working endpoints", len(findings))
	} else {
		logging.Infof("no working endpoints found")
	}

	stats.Findings = len(findings)
	stats.Duration = time.Since(start)
	requests := stats.TotalCandidates - stats.Skipped
	if stats.Duration.Seconds() > 0 {
		stats.RequestsPerSec = float64(requests) / stats.Duration.Seconds()
	}
	return out.WriteFooter(stats)
}

func createWriter(opts *config.Options) (output.Writer, error) {
	var w output.Writer
	var err error
	switch opts.OutputFormat {
	case "json":
		w, err = output.NewJSONWriter(opts.OutputFile)
	case "csv":
		w, err = output.NewCSVWriter(opts.OutputFile)
	default:
		w, err = output.NewTextWriter(opts.OutputFile, opts.NoColor, opts.Quiet)
	}
	if err != nil {
		return nil, err
	}
	if opts.SortBy != "" {
		w = output.NewSortedWriter(w, opts.SortBy)
	}
	return w, nil
}

func printBanner(opts *config.Options, candidateCount int) {
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(os.Stderr, "\n%s %s | session %s\n", bold("apifuzz"), version.Version, logging.Session())
	fmt.Fprintf(os.Stderr, "%s\n", dim("──────────────────────────────────────"))
	fmt.Fprintf(os.Stderr, "  %s     %s\n", dim("Target:"), opts.URL)
	fmt.Fprintf(os.Stderr, "  %s     %s\n", dim("Method:"), opts.Method)
	fmt.Fprintf(os.Stderr, "  %s %d candidates\n", dim("Wordlist:"), candidateCount)
	if opts.Workers > 1 {
		fmt.Fprintf(os.Stderr, "  %s       worker pool (%d workers)\n", dim("Mode:"), opts.Workers)
	} else if opts.RateLimit > 0 {
		fmt.Fprintf(os.Stderr, "  %s       sequential, max %g req/s\n", dim("Mode:"), opts.RateLimit)
	} else {
		fmt.Fprintf(os.Stderr, "  %s       sequential\n", dim("Mode:"))
	}
	if opts.RandomAgent {
		fmt.Fprintf(os.Stderr, "  %s    user-agent randomization\n", dim("Extras:"))
	}
	if opts.BypassHeaders {
		fmt.Fprintf(os.Stderr, "  %s    bypass-header mutation\n", dim("Extras:"))
	}
	fmt.Fprintf(os.Stderr, "%s\n\n", dim("──────────────────────────────────────"))
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apifuzz/apifuzz/internal/config"
	"github.com/apifuzz/apifuzz/internal/logging"
	"github.com/apifuzz/apifuzz/internal/runner"
	"github.com/apifuzz/apifuzz/pkg/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var opts config.Options

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "wordlist", "method"}},
	{"REQUEST", []string{"timeout", "insecure", "header", "token", "token-type", "api-key", "random-agent", "bypass-headers"}},
	{"RATE", []string{"workers", "rate-limit"}},
	{"OUTPUT", []string{"output", "format", "sort", "on-result", "no-progress", "quiet", "verbose", "no-color"}},
}

var rootCmd = &cobra.Command{
	Use:     "apifuzz -u <url> -w <wordlist> [flags]",
	Short:   "Concurrent API endpoint discovery tool",
	Version: version.Version,
	Long: `apifuzz probes wordlist candidates against a target base URL and
reports every endpoint that does not behave like a missing route.
Responses other than 404 — including redirects, auth walls, and server
errors — are treated as findings.`,
	Example: `  apifuzz -u https://example.com/api -w apiroutes.txt
  apifuzz -u https://example.com -w routes.txt --workers 25
  apifuzz -u https://example.com -w routes.txt --rate-limit 5
  apifuzz -u https://example.com -w routes.txt --method POST --token $TOKEN
  apifuzz -u https://example.com -w routes.txt --random-agent --bypass-headers
  apifuzz -u https://example.com -w routes.txt -o results.json --format json`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if opts.URL == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("target required: use -u")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case opts.Quiet:
			logging.SetLevel(logging.LevelQuiet)
		case opts.Verbose:
			logging.SetLevel(logging.LevelDebug)
		}
		if opts.NoColor {
			color.NoColor = true
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, &opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Target base URL (including http:// or https://)")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "apiroutes.txt", "Wordlist file path")
	f.StringVarP(&opts.Method, "method", "X", "GET", "HTTP method to use for requests")

	// Request
	f.DurationVar(&opts.Timeout, "timeout", 3*time.Second, "Per-request timeout")
	f.BoolVarP(&opts.Insecure, "insecure", "k", false, "Skip TLS certificate verification")
	f.StringSliceVarP(&opts.Headers, "header", "H", nil, "Custom headers (Key: Value), repeatable")
	f.StringVar(&opts.Token, "token", "", "Authorization token")
	f.StringVar(&opts.TokenType, "token-type", "Bearer", "Authorization token type")
	f.StringVar(&opts.APIKey, "api-key", "", "X-API-Key header value")
	f.BoolVar(&opts.RandomAgent, "random-agent", false, "Randomize User-Agent and Referer per request")
	f.BoolVar(&opts.BypassHeaders, "bypass-headers", false, "Inject random IP-spoofing headers per request")

	// Rate
	f.IntVarP(&opts.Workers, "workers", "t", 1, "Concurrent workers (>1 disables rate limiting)")
	f.Float64Var(&opts.RateLimit, "rate-limit", 0, "Max requests per second in sequential mode (0 = unbounded)")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, csv")
	f.StringVar(&opts.SortBy, "sort", "", "Sort findings: status, endpoint, size (buffers until scan completes)")
	f.StringVar(&opts.OnResultCmd, "on-result", "", "Shell command to run for each finding (receives JSON on stdin)")
	f.BoolVar(&opts.NoProgress, "no-progress", false, "Disable progress bar")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Only show results")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	// Custom help: categorized flags.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprintf(w, "\napifuzz %s\n\n%s\n\nUsage:\n  %s\n", cmd.Version, cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	// Show default for non-zero values.
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

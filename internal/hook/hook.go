package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/apifuzz/apifuzz/internal/logging"
	"github.com/apifuzz/apifuzz/internal/scanner"
)

// findingJSON is the payload sent to the hook command via stdin.
type findingJSON struct {
	Candidate  string `json:"candidate"`
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status"`
	Size       int64  `json:"size"`
	Body       any    `json:"body,omitempty"`
}

// Runner executes a shell command for each finding.
type Runner struct {
	cmd string
}

// NewRunner creates a hook runner. cmd is the shell command to execute.
func NewRunner(cmd string) *Runner {
	return &Runner{cmd: cmd}
}

// Run executes the hook with the finding as JSON on stdin. {url},
// {candidate}, {status} and {size} placeholders are expanded in the
// command. Errors are logged but never halt the scan.
func (r *Runner) Run(f *scanner.Finding) {
	data, err := json.Marshal(findingJSON{
		Candidate:  f.Candidate,
		Endpoint:   f.Endpoint,
		StatusCode: f.StatusCode,
		Size:       f.ContentLength,
		Body:       f.Body,
	})
	if err != nil {
		logging.Errorf("hook: marshal error: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expanded := r.cmd
	expanded = strings.ReplaceAll(expanded, "{url}", f.Endpoint)
	expanded = strings.ReplaceAll(expanded, "{candidate}", f.Candidate)
	expanded = strings.ReplaceAll(expanded, "{status}", fmt.Sprintf("%d", f.StatusCode))
	expanded = strings.ReplaceAll(expanded, "{size}", fmt.Sprintf("%d", f.ContentLength))

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, expanded)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	if err != nil {
		logging.Warnf("hook: %v", err)
		return
	}
	if len(output) > 0 {
		logging.Infof("hook: %s", strings.TrimRight(string(output), "\n"))
	}
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}

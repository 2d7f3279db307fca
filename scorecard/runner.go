package scorecard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

// MinVersion is the oldest scorecard release whose JSON output we accept.
var MinVersion = goversion.Must(goversion.NewVersion("4.0.0"))

// Runner invokes the scorecard binary once per call. It holds no per-call
// state, so a single Runner is safe to share across workers.
type Runner struct {
	Path    string
	Timeout time.Duration
	Token   string
}

// NewRunner builds a Runner for the given binary path and per-call timeout.
func NewRunner(path string, timeout time.Duration, token string) *Runner {
	if path == "" {
		path = "scorecard"
	}
	return &Runner{Path: path, Timeout: timeout, Token: token}
}

// CheckInstall verifies the binary exists on PATH and is recent enough.
func (r *Runner) CheckInstall(ctx context.Context) error {
	bin, err := exec.LookPath(r.Path)
	if err != nil {
		return &NotInstalledError{Path: r.Path, Reason: "binary not found on PATH"}
	}

	out, err := exec.CommandContext(ctx, bin, "version").CombinedOutput()
	if err != nil {
		// Some builds only support --version; treat a found binary whose
		// version cannot be read as usable rather than refusing to run.
		return nil
	}

	v := extractVersion(string(out))
	if v == "" {
		return nil
	}
	parsed, err := goversion.NewVersion(v)
	if err != nil {
		return nil
	}
	if parsed.LessThan(MinVersion) {
		return &NotInstalledError{
			Path:   bin,
			Reason: fmt.Sprintf("version %s is older than the minimum supported %s", parsed, MinVersion),
		}
	}
	return nil
}

// Run executes scorecard for one repository and parses its JSON output.
// checks selects specific checks; empty means all. Failures come back as
// *ExecError, *TimeoutError or *ParseError, never as a panic or raw exit.
func (r *Runner) Run(ctx context.Context, repo string, checks []string) (*Payload, error) {
	args := []string{
		fmt.Sprintf("--repo=%s", repo),
		"--format=json",
		"--show-details",
	}
	for _, c := range checks {
		args = append(args, fmt.Sprintf("--checks=%s", c))
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.Path, args...)
	// Killing the direct child does not close pipe write-ends inherited by
	// its own children; without a wait delay, Run would block until the
	// whole process tree exits. After cancellation, abandon the pipes.
	cmd.WaitDelay = time.Second
	cmd.Env = os.Environ()
	if r.Token != "" {
		cmd.Env = append(cmd.Env,
			"GITHUB_TOKEN="+r.Token,
			"GITHUB_AUTH_TOKEN="+r.Token,
		)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Repo: repo, Timeout: r.Timeout}
		}
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		return nil, &ExecError{Repo: repo, ExitCode: exitCode, Stderr: truncate(msg, 500)}
	}

	var payload Payload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, &ParseError{Repo: repo, Err: err}
	}
	return &payload, nil
}

func extractVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "GitVersion:"); ok {
			return strings.TrimPrefix(strings.TrimSpace(rest), "v")
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package scorecard

import (
	"fmt"
	"time"
)

// NotInstalledError means the scorecard binary is missing or too old. This is
// a configuration problem and aborts before any scanning starts.
type NotInstalledError struct {
	Path   string
	Reason string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("scorecard not usable at %q: %s\ninstall it with: go install github.com/ossf/scorecard/v5/cmd/scorecard@latest", e.Path, e.Reason)
}

// ExecError means one analyzer invocation failed. It is recovered per
// repository and never aborts the batch.
type ExecError struct {
	Repo     string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("scorecard failed for %s (exit %d): %s", e.Repo, e.ExitCode, e.Stderr)
}

// TimeoutError means the analyzer hit the per-invocation wall-clock limit.
type TimeoutError struct {
	Repo    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("scorecard timed out for %s after %s", e.Repo, e.Timeout)
}

// ParseError means the analyzer exited cleanly but its output was not the
// expected JSON document.
type ParseError struct {
	Repo string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scorecard output for %s is not valid JSON: %v", e.Repo, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

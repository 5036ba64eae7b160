// Package rclone invokes the external synchronization utility as a
// subprocess and classifies its results.
//
// Instead of threading raw exit codes and stderr text through call sites,
// every invocation is reduced to a tagged Outcome: OK with the stdout lines,
// NotFound for the family of "nothing there" responses that pruning treats as
// success, or Failed with the diagnostic message.
package rclone

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
)

// DefaultBinary is the sync utility binary resolved from PATH.
const DefaultBinary = "rclone"

// Result is the raw outcome of one subprocess invocation.
type Result struct {
	// Stdout is the captured standard output
	Stdout string

	// Stderr is the captured standard error
	Stderr string

	// ExitCode is the process exit code
	ExitCode int
}

// Runner executes the sync utility. It is an interface so tests can
// substitute a fake without spawning processes.
type Runner interface {
	Run(ctx context.Context, args ...string) (*Result, error)
}

// ExecRunner runs the sync utility via os/exec.
type ExecRunner struct {
	// Binary is the executable name or path; DefaultBinary when empty
	Binary string
}

// Run executes the binary with the given arguments and captures its output.
// A missing binary is reported as ErrSyncToolUnavailable; a non-zero exit is
// not an error here, it is carried in the result for classification.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (*Result, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, sweeperrors.NewError("run", sweeperrors.ErrSyncToolUnavailable).
			WithMessage(err.Error())
	}

	return result, nil
}

// Status tags the classified outcome of an invocation.
type Status int

const (
	// StatusOK means the command succeeded
	StatusOK Status = iota

	// StatusNotFound means the target was already absent or not a directory;
	// pruning treats this as a no-op success
	StatusNotFound

	// StatusFailed means the command failed for any other reason
	StatusFailed
)

// Outcome is the tagged result of a classified invocation.
type Outcome struct {
	// Status is the outcome tag
	Status Status

	// Lines holds the non-empty stdout lines when Status is StatusOK
	Lines []string

	// Message carries the diagnostic text when Status is StatusFailed
	Message string
}

// noOpMarkers are the stderr substrings that mean "nothing to do" rather than
// failure. The set mirrors what the sync utility emits for absent paths and
// pattern deletes that match nothing.
var noOpMarkers = []string{
	"not found",
	"directory not found",
	"is a file not a directory",
	"no matching objects",
}

// Classify reduces a raw result to a tagged outcome.
func Classify(result *Result) Outcome {
	if result.ExitCode == 0 {
		return Outcome{Status: StatusOK, Lines: splitLines(result.Stdout)}
	}

	stderr := strings.ToLower(result.Stderr)
	for _, marker := range noOpMarkers {
		if strings.Contains(stderr, marker) {
			return Outcome{Status: StatusNotFound}
		}
	}

	msg := strings.TrimSpace(result.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(result.Stdout)
	}
	return Outcome{Status: StatusFailed, Message: msg}
}

// splitLines splits output into non-empty trimmed lines.
func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

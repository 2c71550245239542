// Package engine invokes the external secret-detection binary for one target
// and classifies the outcome of the run.
package engine

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/secsweep/secsweep/internal/tokenpool"
)

// Status classifies the outcome of one engine invocation.
type Status int

const (
	StatusSucceeded Status = iota
	StatusRateLimited
	StatusFailed
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusRateLimited:
		return "rate_limited"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Result holds the classified outcome of a single scan attempt.
type Result struct {
	ScanID     string
	Status     Status
	Output     string // stdout of a successful run, one JSON record per line
	Diagnostic string // stderr of a failed run
}

// Engine runs the detection binary as a bounded-time external process.
// It mutates no shared state; rate-limit bookkeeping belongs to the caller.
type Engine struct {
	binary    string
	timeout   time.Duration
	extraArgs []string
	logger    hclog.Logger
}

// New creates an engine around the given binary.
func New(binary string, timeout time.Duration, extraArgs []string, logger hclog.Logger) *Engine {
	return &Engine{
		binary:    binary,
		timeout:   timeout,
		extraArgs: extraArgs,
		logger:    logger,
	}
}

// Scan runs one detection pass over the target authenticated with token.
// A non-zero exit whose stderr mentions an HTTP 403 is classified as a rate
// limit; an exceeded time budget as a timeout; anything else non-zero as a
// failure carrying the diagnostic text.
func (e *Engine) Scan(ctx context.Context, target, token string) Result {
	result := Result{ScanID: uuid.NewString()}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{"github", "--org", target, "--token", token, "--json"}
	args = append(args, e.extraArgs...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Info("starting engine scan",
		"scan_id", result.ScanID, "target", target, "token", tokenpool.Mask(token))
	e.logger.Debug("engine command", "scan_id", result.ScanID, "binary", e.binary, "timeout", e.timeout)

	err := cmd.Run()
	diagnostic := stderr.String()

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Status = StatusTimedOut
		result.Diagnostic = diagnostic
	case err != nil && strings.Contains(diagnostic, "403"):
		result.Status = StatusRateLimited
		result.Diagnostic = diagnostic
	case err != nil:
		result.Status = StatusFailed
		result.Diagnostic = diagnostic
		if diagnostic == "" {
			result.Diagnostic = err.Error()
		}
	default:
		result.Status = StatusSucceeded
		result.Output = stdout.String()
	}

	e.logger.Info("engine scan finished",
		"scan_id", result.ScanID, "target", target, "status", result.Status.String())
	return result
}

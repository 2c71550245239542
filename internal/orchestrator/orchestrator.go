// Package orchestrator drives the per-target retry state machine and the
// continuous cycle scheduler over the full target list.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/hashicorp/go-hclog"

	"github.com/secsweep/secsweep/internal/engine"
	"github.com/secsweep/secsweep/internal/findings"
	"github.com/secsweep/secsweep/internal/ledger"
	"github.com/secsweep/secsweep/internal/tokenpool"
)

// Engine runs one scan attempt against one target.
type Engine interface {
	Scan(ctx context.Context, target, token string) engine.Result
}

// Processor turns raw engine output into persisted artifacts.
type Processor interface {
	Process(target, rawOutput string) (findings.Report, error)
}

// Notifier delivers best-effort operator messages.
type Notifier interface {
	Post(text string) error
	Alert(target string, verified []findings.Finding) error
}

// Outcome is the terminal state of one target within a cycle.
type Outcome int

const (
	// OutcomeSkipped means the target was already in the completed ledger.
	OutcomeSkipped Outcome = iota
	// OutcomeCompleted means the scan succeeded and the target was durably recorded.
	OutcomeCompleted
	// OutcomeFailed means the engine failed or timed out, or an artifact write failed.
	OutcomeFailed
	// OutcomeExhausted means the rate-limit retry ceiling was reached.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Orchestrator owns all mutable scan state: the token pool, the completed
// ledger, and the retry bookkeeping. It is driven by a single worker.
type Orchestrator struct {
	pool      *tokenpool.Pool
	engine    Engine
	processor Processor
	notifier  Notifier
	ledger    *ledger.Ledger

	maxRetries int
	retryDelay time.Duration
	logger     hclog.Logger

	sleep func(time.Duration)
}

// New wires the orchestrator together.
func New(pool *tokenpool.Pool, eng Engine, processor Processor, notifier Notifier, l *ledger.Ledger,
	maxRetries int, retryDelay time.Duration, logger hclog.Logger) *Orchestrator {
	return &Orchestrator{
		pool:       pool,
		engine:     eng,
		processor:  processor,
		notifier:   notifier,
		ledger:     l,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// ScanTarget runs the retry loop for one target. Completed targets are
// skipped without work. Rate limits cool the token and consume an attempt up
// to the retry ceiling; any other engine failure is terminal for this cycle.
func (o *Orchestrator) ScanTarget(ctx context.Context, target string) (Outcome, error) {
	if o.ledger.Contains(target) {
		o.logger.Info("skipping completed target", "target", target)
		return OutcomeSkipped, nil
	}

	o.logger.Info("starting scan", "target", target)
	attempts := 0

	for attempts < o.maxRetries {
		token, err := o.acquireToken(ctx)
		if err != nil {
			return OutcomeFailed, err
		}
		o.logger.Info("using token", "target", target, "token", tokenpool.Mask(token))

		result := o.engine.Scan(ctx, target, token)

		switch result.Status {
		case engine.StatusSucceeded:
			return o.finishTarget(target, result.Output)

		case engine.StatusRateLimited:
			o.pool.MarkRateLimited(token)
			attempts++
			o.logger.Warn("scan rate limited",
				"target", target, "attempt", attempts, "ceiling", o.maxRetries)
			if attempts < o.maxRetries {
				o.sleep(o.retryDelay)
			}

		default:
			o.logger.Error("scan failed",
				"target", target,
				"scan_id", result.ScanID,
				"status", result.Status.String(),
				"diagnostic", result.Diagnostic)
			return OutcomeFailed, nil
		}
	}

	o.logger.Error("retry ceiling reached, abandoning target", "target", target)
	return OutcomeExhausted, nil
}

// finishTarget processes output, alerts, and records completion. Artifact and
// ledger write failures propagate; alert delivery failure does not.
func (o *Orchestrator) finishTarget(target, output string) (Outcome, error) {
	report, err := o.processor.Process(target, output)
	if err != nil {
		return OutcomeFailed, err
	}

	if err := o.notifier.Alert(target, report.Verified); err != nil {
		o.logger.Error("alert delivery failed", "target", target, "error", err)
	}

	if err := o.ledger.MarkCompleted(target); err != nil {
		return OutcomeFailed, err
	}

	o.logger.Info("target completed",
		"target", target, "findings", len(report.All), "verified", len(report.Verified))
	return OutcomeCompleted, nil
}

// acquireToken blocks until a token leaves cool-down, polling on a constant
// backoff equal to the cool-down duration. Waiting here does not consume a
// retry attempt. The wait is unbounded, matching the rotation contract; only
// context cancellation breaks it.
func (o *Orchestrator) acquireToken(ctx context.Context) (string, error) {
	var token string
	operation := func() error {
		t, ok := o.pool.NextAvailable()
		if !ok {
			o.logger.Warn("all tokens cooling down, waiting", "cooldown", o.pool.Cooldown())
			return fmt.Errorf("all tokens are cooling down")
		}
		token = t
		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(o.pool.Cooldown()), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("token acquisition aborted: %w", err)
	}
	return token, nil
}

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/secsweep/secsweep/pkg/shared/files"
)

// TargetScanner is the per-target entry point the scheduler drives.
type TargetScanner interface {
	ScanTarget(ctx context.Context, target string) (Outcome, error)
}

// Scheduler alternates bounded scanning windows with mandatory rest windows,
// forever. It has no termination condition of its own; only context
// cancellation stops it.
type Scheduler struct {
	scanner  TargetScanner
	notifier Notifier

	targetsFile   string
	runDuration   time.Duration
	breakDuration time.Duration
	targetPause   time.Duration
	logger        hclog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewScheduler creates the cycle scheduler.
func NewScheduler(scanner TargetScanner, notifier Notifier, targetsFile string,
	runDuration, breakDuration, targetPause time.Duration, logger hclog.Logger) *Scheduler {
	return &Scheduler{
		scanner:       scanner,
		notifier:      notifier,
		targetsFile:   targetsFile,
		runDuration:   runDuration,
		breakDuration: breakDuration,
		targetPause:   targetPause,
		logger:        logger,
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// Run loops over cycles until the context is cancelled or the target list
// becomes unreadable.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := s.now()
		deadline := start.Add(s.runDuration)
		s.logger.Info("starting scanning cycle", "until", deadline.Format(time.RFC3339))
		if err := s.notifier.Post("🔌 Secret sweeper started new cycle"); err != nil {
			s.logger.Error("failed to announce cycle start", "error", err)
		}

		if err := s.RunOnce(ctx); err != nil {
			return err
		}

		if remaining := deadline.Sub(s.now()); remaining > 0 {
			s.logger.Info("scanning completed early, waiting out the cycle window", "remaining", remaining)
			s.sleep(ctx, remaining)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		resume := s.now().Add(s.breakDuration)
		s.logger.Info("taking scheduled break", "duration", s.breakDuration)
		if err := s.notifier.Post(fmt.Sprintf(
			"🛑 Scanner pausing for %d minute break. Resuming at %s",
			int(s.breakDuration.Minutes()), resume.Format("15:04"))); err != nil {
			s.logger.Error("failed to announce break", "error", err)
		}
		s.sleep(ctx, s.breakDuration)
	}
}

// RunOnce drives a single pass over the target list. A failed target is
// logged and the pass moves on; only an unreadable target list or context
// cancellation aborts the pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	targets, err := files.ReadLines(s.targetsFile)
	if err != nil {
		return fmt.Errorf("failed to load target list: %w", err)
	}
	s.logger.Info("loaded target list", "count", len(targets))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := s.scanner.ScanTarget(ctx, target)
		if err != nil {
			s.logger.Error("target scan failed", "target", target, "error", err)
		}
		s.logger.Info("target finished", "target", target, "outcome", outcome.String())

		// Brief pause between scanned targets; skipped ones cost nothing.
		if outcome != OutcomeSkipped {
			s.sleep(ctx, s.targetPause)
		}
	}
	return nil
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

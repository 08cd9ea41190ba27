// Package scheduler drives sweep cycles, either once or on an interval.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"tempkeeper/internal/config"
	"tempkeeper/internal/journal"
	"tempkeeper/internal/metrics"
	"tempkeeper/internal/safety"
	"tempkeeper/internal/scan"
	"tempkeeper/internal/sweep"
)

var errNilConfig = errors.New("nil config")

// RunOnce performs a single sweep cycle: scan the roots, remove stale
// candidates, update metrics.
func RunOnce(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, jnl *journal.DB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errNilConfig
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	metrics.RecordSweepRun()

	candidates, err := scan.Scan(cfg, start)
	if err != nil {
		// Unreadable roots are logged but do not abort the cycle as
		// long as some candidates were found elsewhere.
		logger.Printf("scan reported errors: %v", err)
		metrics.SweepErrorsTotal.Inc()
		if candidates == nil {
			return err
		}
	}

	validator := safety.NewValidator(cfg.Roots(), nil)
	sweeper := sweep.New(logger, validator, dryRun, jnl)
	removed, reclaimed, err := sweeper.Run(ctx, candidates)
	if err != nil {
		metrics.SweepErrorsTotal.Inc()
		return err
	}

	elapsed := time.Since(start).Seconds()
	metrics.SweepDuration.Observe(elapsed)

	logger.Printf("cycle complete: candidates=%d removed=%d reclaimed=%d bytes duration=%.3fs",
		len(candidates), removed, reclaimed, elapsed)
	return nil
}

// Run performs sweep cycles on the configured interval until the context
// is canceled. A failing cycle is logged and the loop keeps going.
func Run(ctx context.Context, cfg *config.Config, dryRun bool, logger *log.Logger, jnl *journal.DB) error {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return errNilConfig
	}

	if err := RunOnce(ctx, cfg, dryRun, logger, jnl); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := RunOnce(ctx, cfg, dryRun, logger, jnl); err != nil {
				logger.Printf("error running cycle: %v", err)
			}
		}
	}
}

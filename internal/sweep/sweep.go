// Package sweep removes stale temporary objects found by scan, guarded by
// the safety validator and recorded in the journal.
package sweep

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tempkeeper/internal/fsops"
	"tempkeeper/internal/journal"
	"tempkeeper/internal/metrics"
	"tempkeeper/internal/safety"
	"tempkeeper/internal/scan"
)

// Logger interface for structured logging in sweep.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement the Logger interface.
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Sweeper removes stale candidates with validation, journaling and metrics.
type Sweeper struct {
	logger    Logger
	remover   fsops.Remover
	validator *safety.Validator
	jnl       *journal.DB
	dryRun    bool
}

// New creates a Sweeper. jnl may be nil to skip journaling.
func New(logger *log.Logger, validator *safety.Validator, dryRun bool, jnl *journal.DB) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		logger:    &stdLogger{Logger: logger},
		remover:   fsops.OS{},
		validator: validator,
		jnl:       jnl,
		dryRun:    dryRun,
	}
}

// SetRemover swaps the filesystem backend. Tests use this with fsops.Fake
// to prove dry-run never deletes.
func (s *Sweeper) SetRemover(r fsops.Remover) {
	s.remover = r
}

// Run removes the given candidates. It returns the number of objects
// removed and the bytes reclaimed. Per-candidate failures are logged,
// journaled and counted but do not abort the run.
func (s *Sweeper) Run(ctx context.Context, candidates []scan.Candidate) (int, int64, error) {
	s.logger.Info("Starting sweep", "total_candidates", len(candidates))

	var reclaimed int64
	removed := 0
	errorCount := 0

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return removed, reclaimed, err
		}

		if s.validator != nil {
			if err := s.validator.ValidateRemoveTarget(cand.Path); err != nil {
				s.record("SKIP", cand, err.Error())
				metrics.SweepErrorsTotal.Inc()
				errorCount++
				continue
			}
		}

		if s.dryRun {
			s.logger.Info("[DRY RUN] Would remove", "path", cand.Path, "size", cand.Size)
			s.record("DRY_RUN", cand, "")
			continue
		}

		var err error
		if cand.IsDir {
			err = s.remover.RemoveTree(ctx, cand.Path)
		} else {
			err = s.remover.Remove(ctx, cand.Path)
		}
		if err != nil {
			s.logger.Error("Failed to remove", "path", cand.Path, "error", err)
			s.record("ERROR", cand, err.Error())
			metrics.SweepErrorsTotal.Inc()
			errorCount++
			continue
		}

		s.record("REMOVE", cand, "")
		reclaimed += cand.Size
		removed++

		metrics.ObjectsRemovedTotal.Inc()
		metrics.BytesReclaimedTotal.Add(float64(cand.Size))
		metrics.RecordRootRemoval(cand.Reason.Rule, cand.Size)
	}

	s.logger.Info("Sweep complete",
		"removed", removed,
		"errors", errorCount,
		"bytes_reclaimed", reclaimed,
	)
	return removed, reclaimed, nil
}

// record writes one structured line and, if a journal is attached, persists
// the event. Journal write failures must not fail the sweep.
func (s *Sweeper) record(action string, cand scan.Candidate, errMsg string) {
	line := fmt.Sprintf("[%s] %s path=%s object=%s size=%d",
		time.Now().UTC().Format(time.RFC3339),
		action,
		cand.Path,
		objectType(cand),
		cand.Size,
	)
	if reason := cand.Reason.ToLogString(); reason != "unknown" {
		line += fmt.Sprintf(" reason=%q", strings.ReplaceAll(reason, `"`, `\"`))
	}
	s.logger.Info(line)

	if s.jnl != nil {
		if err := s.jnl.RecordEvent(action, cand, errMsg); err != nil {
			s.logger.Error("Failed to record to journal", "error", err)
		}
	}
}

func objectType(c scan.Candidate) string {
	if c.IsDir {
		return "directory"
	}
	return "file"
}

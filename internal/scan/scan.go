// Package scan discovers stale temporary objects under the configured
// sweep roots. An object is a candidate when its name carries the rule's
// prefix and its modification time is older than the rule's threshold.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tempkeeper/internal/config"
)

// Candidate is one stale object found under a sweep root.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	Reason  StaleReason
}

var errNoRules = errors.New("no sweep rules to scan")

// Scan inspects all sweep roots and returns removal candidates. Roots that
// cannot be read are skipped and reported in the joined error; candidates
// from readable roots are still returned.
func Scan(cfg *config.Config, now time.Time) ([]Candidate, error) {
	if cfg == nil || len(cfg.Sweeps) == 0 {
		return nil, errNoRules
	}

	var (
		candidates []Candidate
		errs       []error
	)
	for _, rule := range cfg.Sweeps {
		found, err := scanRule(rule, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, found...)
	}
	return candidates, errors.Join(errs...)
}

// scanRule looks at the direct entries of the rule's path. Temporary
// objects are created directly inside their parent directory, so there is
// no need to walk nested trees; a stale directory is returned as a single
// candidate covering its whole subtree.
func scanRule(rule config.SweepRule, now time.Time) ([]Candidate, error) {
	entries, err := os.ReadDir(rule.Path)
	if err != nil {
		return nil, fmt.Errorf("read sweep root %s: %w", rule.Path, err)
	}

	maxAge := rule.MaxAge()
	var out []Candidate
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), rule.Prefix) {
			continue
		}
		if entry.IsDir() && !rule.Recursive {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		age := now.Sub(info.ModTime())
		if age < maxAge {
			continue
		}
		out = append(out, Candidate{
			Path:    filepath.Join(rule.Path, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   entry.IsDir(),
			Reason: StaleReason{
				Prefix:      rule.Prefix,
				MaxAge:      maxAge,
				ActualAge:   age,
				Rule:        rule.Path,
				EvaluatedAt: now,
			},
		})
	}
	return out, nil
}

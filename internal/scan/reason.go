package scan

import (
	"fmt"
	"time"
)

// StaleReason captures why an object was selected for removal.
type StaleReason struct {
	Prefix      string        // Name prefix that matched
	MaxAge      time.Duration // Configured staleness threshold
	ActualAge   time.Duration // Age of the object at scan time
	Rule        string        // Sweep root that produced the candidate
	EvaluatedAt time.Time     // When the condition was checked
}

// HasReason returns true if a staleness condition actually applied.
func (r StaleReason) HasReason() bool {
	return r.MaxAge > 0 && r.ActualAge >= r.MaxAge
}

// ToLogString formats the reason for structured logging.
// Example: "stale: age=37h (max=24h) prefix=atmp_"
func (r StaleReason) ToLogString() string {
	if !r.HasReason() {
		return "unknown"
	}
	return fmt.Sprintf("stale: age=%s (max=%s) prefix=%s",
		roundHours(r.ActualAge), roundHours(r.MaxAge), r.Prefix)
}

func roundHours(d time.Duration) string {
	return fmt.Sprintf("%dh", int(d.Hours()))
}

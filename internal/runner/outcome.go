package runner

import (
	"time"

	"mediasort/internal/organizer"
	"mediasort/internal/staging"
)

// Outcome is everything a run produced. It is returned even when the run
// fails so callers can report partial progress.
type Outcome struct {
	RunID      string                 `json:"run_id"`
	Source     string                 `json:"source"`
	Archive    bool                   `json:"archive"`
	StagingDir string                 `json:"staging_dir,omitempty"`
	State      State                  `json:"state"`
	Path       []State                `json:"path"`
	Result     organizer.Result       `json:"result"`
	Extraction *staging.Extraction    `json:"extraction,omitempty"`
	Cleanup    *staging.CleanupResult `json:"cleanup,omitempty"`
	Started    time.Time              `json:"started"`
	Finished   time.Time              `json:"finished"`
}

// Preserved reports whether the staging tree and archive were intentionally
// kept because files remained unplaced.
func (o Outcome) Preserved() bool {
	for _, s := range o.Path {
		if s == StatePreserving {
			return true
		}
	}
	return false
}

// CleanedUp reports whether cleanup ran and removed everything.
func (o Outcome) CleanedUp() bool {
	return o.Cleanup != nil && len(o.Cleanup.Errors) == 0
}

// Duration is the wall time of the run.
func (o Outcome) Duration() time.Duration {
	if o.Finished.IsZero() {
		return 0
	}
	return o.Finished.Sub(o.Started)
}

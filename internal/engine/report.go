package engine

import (
	"time"

	"github.com/google/uuid"
)

// Summary partitions a batch's results. A skipped result is counted as
// skipped regardless of its success flag.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Report is the ephemeral outcome of one batch run. It is returned to
// the caller and never persisted.
type Report struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Summary   Summary      `json:"summary"`
	Details   []SiteResult `json:"details"`
}

func newReport() *Report {
	return &Report{
		ID:      uuid.NewString(),
		Details: []SiteResult{},
	}
}

func (r *Report) add(result SiteResult) {
	r.Details = append(r.Details, result)

	r.Summary.Total++
	switch {
	case result.Skipped:
		r.Summary.Skipped++
	case result.Success:
		r.Summary.Success++
	default:
		r.Summary.Failed++
	}
}

func (r *Report) finalize() {
	r.Timestamp = time.Now()
}

// SiteStats is the per-site slice of Statistics.
type SiteStats struct {
	Name          string `json:"name"`
	TotalCheckins int    `json:"total_checkins"`
	Streak        int    `json:"streak"`
	LastCheckin   string `json:"last_checkin,omitempty"`
}

// Statistics is a read-only roll-up of registry metadata and persisted
// per-site records.
type Statistics struct {
	TotalSites  int                  `json:"total_sites"`
	ActiveSites int                  `json:"active_sites"`
	Sites       map[string]SiteStats `json:"sites"`
}

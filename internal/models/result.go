package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SyncResult describes the outcome of syncing one source in one run.
type SyncResult struct {
	Source       string
	NewCount     int
	TotalFetched int
	Errors       []string
}

// Failed reports whether the source finished with errors.
func (r SyncResult) Failed() bool {
	return len(r.Errors) > 0
}

// RunSummary aggregates per-source results for one orchestrator run. It is
// the only state kept in memory across a run and is discarded once
// reported.
type RunSummary struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	TotalFetched int
	TotalNew     int
	Results      []SyncResult
}

// NewRunSummary creates a summary with a generated run ID and start time.
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Add records a per-source result and updates the totals.
func (s *RunSummary) Add(result SyncResult) {
	s.Results = append(s.Results, result)
	s.TotalFetched += result.TotalFetched
	s.TotalNew += result.NewCount
}

// HasErrors reports whether any source finished with errors.
func (s *RunSummary) HasErrors() bool {
	for _, r := range s.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// AllErrors returns the concatenated error list across all sources.
func (s *RunSummary) AllErrors() []string {
	var errs []string
	for _, r := range s.Results {
		for _, e := range r.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", r.Source, e))
		}
	}
	return errs
}

// String renders a human-readable report of the run.
func (s *RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sync run %s: %d fetched, %d new\n", s.RunID, s.TotalFetched, s.TotalNew)
	for _, r := range s.Results {
		status := "ok"
		if r.Failed() {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  %-12s %s  fetched=%d new=%d\n", r.Source, status, r.TotalFetched, r.NewCount)
	}
	for _, e := range s.AllErrors() {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	return b.String()
}

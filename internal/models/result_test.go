package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummaryAggregation(t *testing.T) {
	s := NewRunSummary()
	assert.NotEmpty(t, s.RunID)

	s.Add(SyncResult{Source: "stripe", NewCount: 3, TotalFetched: 10})
	s.Add(SyncResult{Source: "paypal", NewCount: 0, TotalFetched: 4, Errors: []string{"fetch failed"}})

	assert.Equal(t, 14, s.TotalFetched)
	assert.Equal(t, 3, s.TotalNew)
	assert.True(t, s.HasErrors())
	assert.Equal(t, []string{"paypal: fetch failed"}, s.AllErrors())

	report := s.String()
	assert.Contains(t, report, "stripe")
	assert.Contains(t, report, "FAILED")
}

func TestRunSummaryNoErrors(t *testing.T) {
	s := NewRunSummary()
	s.Add(SyncResult{Source: "stripe", NewCount: 1, TotalFetched: 1})

	assert.False(t, s.HasErrors())
	assert.Empty(t, s.AllErrors())
}

package models

import "time"

// MRunSummary reports what one pipeline run did.
type MRunSummary struct {
	RunID            string        `json:"run_id"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	FilesDiscovered  int           `json:"files_discovered"`
	FilesSkipped     int           `json:"files_skipped"`
	RecordsExtracted int           `json:"records_extracted"`
	RecordsWritten   int           `json:"records_written"`
	RecordsSkipped   int           `json:"records_skipped"`
	RecordsDuplicate int           `json:"records_duplicate"`
	NonTradingDays   int           `json:"non_trading_days"`
	PerKeyArtifacts  int           `json:"per_key_artifacts"`
	CombinedWritten  bool          `json:"combined_written"`
	MonthlyArtifacts int           `json:"monthly_artifacts"`
}

// ArtifactsWritten counts every artifact touched by the run.
func (s MRunSummary) ArtifactsWritten() int {
	n := s.PerKeyArtifacts + s.MonthlyArtifacts
	if s.CombinedWritten {
		n++
	}
	return n
}

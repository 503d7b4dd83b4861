package domain

import "time"

// RunOutcome is how a sync run ended.
type RunOutcome string

const (
	OutcomeOK      RunOutcome = "ok"
	OutcomePartial RunOutcome = "partial"
	OutcomeFailed  RunOutcome = "failed"
)

// RunRecord describes one finished sync run.
type RunRecord struct {
	DeviceID string
	RunID    string
	Started  time.Time
	Duration time.Duration
	Outcome  RunOutcome
}

// RunStats holds aggregated run data per device.
type RunStats struct {
	DeviceID      string
	FirstRun      time.Time
	LastRun       time.Time
	LastRunID     string
	LastOutcome   RunOutcome
	Runs          int64
	Failures      int64
	Partial       int64
	DurationSumNs int64
}

// NewRunStats creates a new stats struct for a device.
func NewRunStats(id string) *RunStats {
	return &RunStats{DeviceID: id}
}

// SuccessPercent is the share of runs that exported to every sink.
func (s *RunStats) SuccessPercent() float64 {
	if s.Runs == 0 {
		return 0
	}
	ok := s.Runs - s.Failures - s.Partial
	return float64(ok) / float64(s.Runs) * 100
}

func (s *RunStats) AvgDuration() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return time.Duration(s.DurationSumNs / s.Runs)
}

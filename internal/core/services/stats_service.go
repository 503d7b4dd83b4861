package services

import (
	"fmt"

	"biosync/internal/core/domain"
	"biosync/internal/core/ports"
)

// StatsServiceImpl is the default implementation of StatsService.
type StatsServiceImpl struct {
	repo ports.RunStatsRepository
}

// NewStatsService constructs a new StatsServiceImpl.
func NewStatsService(repo ports.RunStatsRepository) *StatsServiceImpl {
	return &StatsServiceImpl{repo: repo}
}

// RecordRun folds one finished run into the device's stats. Records may
// arrive out of order; the latest start wins for the "last run" fields.
func (s *StatsServiceImpl) RecordRun(r domain.RunRecord) error {
	if r.Duration < 0 {
		return fmt.Errorf("run duration must be >= 0")
	}

	return s.repo.WithDevice(r.DeviceID, func(st *domain.RunStats) error {
		if st.Runs == 0 || r.Started.Before(st.FirstRun) {
			st.FirstRun = r.Started
		}
		if st.Runs == 0 || !r.Started.Before(st.LastRun) {
			st.LastRun = r.Started
			st.LastRunID = r.RunID
			st.LastOutcome = r.Outcome
		}
		st.Runs++
		switch r.Outcome {
		case domain.OutcomeFailed:
			st.Failures++
		case domain.OutcomePartial:
			st.Partial++
		}
		st.DurationSumNs += int64(r.Duration)
		return nil
	})
}

func (s *StatsServiceImpl) GetStats(deviceID string) (*ports.Stats, error) {
	st, err := s.repo.GetSnapshot(deviceID)
	if err != nil {
		return nil, err
	}

	return &ports.Stats{
		Runs:        st.Runs,
		Failures:    st.Failures,
		Partial:     st.Partial,
		SuccessRate: st.SuccessPercent(),
		AvgDuration: st.AvgDuration().String(),
		LastRun:     st.LastRun,
		LastRunID:   st.LastRunID,
		LastOutcome: string(st.LastOutcome),
	}, nil
}

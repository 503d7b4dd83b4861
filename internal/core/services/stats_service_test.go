package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
)

// fakeStatsRepo is a tiny in-memory RunStatsRepository used only for tests.
type fakeStatsRepo struct {
	devices map[string]*domain.RunStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{devices: make(map[string]*domain.RunStats)}
}

func (r *fakeStatsRepo) WithDevice(id string, fn func(s *domain.RunStats) error) error {
	s, ok := r.devices[id]
	if !ok {
		s = domain.NewRunStats(id)
		r.devices[id] = s
	}
	return fn(s)
}

func (r *fakeStatsRepo) GetSnapshot(id string) (*domain.RunStats, error) {
	s, ok := r.devices[id]
	if !ok {
		return nil, coreerrors.ErrNoRuns
	}
	copy := *s
	return &copy, nil
}

func record(id, runID string, started time.Time, d time.Duration, o domain.RunOutcome) domain.RunRecord {
	return domain.RunRecord{DeviceID: id, RunID: runID, Started: started, Duration: d, Outcome: o}
}

func TestRecordRun_FirstRunInitializesStats(t *testing.T) {
	repo := newFakeStatsRepo()
	svc := NewStatsService(repo)
	t1 := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

	if err := svc.RecordRun(record("dev", "run-1", t1, 2*time.Second, domain.OutcomeOK)); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	got, err := repo.GetSnapshot("dev")
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}
	if got.Runs != 1 || got.Failures != 0 {
		t.Errorf("expected 1 run and 0 failures, got %d/%d", got.Runs, got.Failures)
	}
	if !got.FirstRun.Equal(t1) || !got.LastRun.Equal(t1) {
		t.Errorf("expected first and last run at %v, got %v / %v", t1, got.FirstRun, got.LastRun)
	}
	if got.LastRunID != "run-1" {
		t.Errorf("expected last run id run-1, got %q", got.LastRunID)
	}
}

func TestRecordRun_OutOfOrderKeepsLatestAsLast(t *testing.T) {
	repo := newFakeStatsRepo()
	svc := NewStatsService(repo)
	t1 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	_ = svc.RecordRun(record("dev", "late", t1.Add(time.Hour), time.Second, domain.OutcomeFailed))
	_ = svc.RecordRun(record("dev", "early", t1, time.Second, domain.OutcomeOK))

	got, _ := repo.GetSnapshot("dev")
	if !got.FirstRun.Equal(t1) {
		t.Errorf("expected FirstRun=%v, got %v", t1, got.FirstRun)
	}
	if got.LastRunID != "late" || got.LastOutcome != domain.OutcomeFailed {
		t.Errorf("expected last run to stay 'late'/failed, got %q/%s", got.LastRunID, got.LastOutcome)
	}
}

func TestRecordRun_NegativeDurationRejected(t *testing.T) {
	svc := NewStatsService(newFakeStatsRepo())

	if err := svc.RecordRun(record("dev", "x", time.Now(), -time.Second, domain.OutcomeOK)); err == nil {
		t.Fatalf("expected error for negative duration")
	}
}

func TestGetStats_Aggregates(t *testing.T) {
	svc := NewStatsService(newFakeStatsRepo())
	t1 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	_ = svc.RecordRun(record("dev", "a", t1, 2*time.Second, domain.OutcomeOK))
	_ = svc.RecordRun(record("dev", "b", t1.Add(time.Minute), 4*time.Second, domain.OutcomePartial))
	_ = svc.RecordRun(record("dev", "c", t1.Add(2*time.Minute), 6*time.Second, domain.OutcomeFailed))
	_ = svc.RecordRun(record("dev", "d", t1.Add(3*time.Minute), 8*time.Second, domain.OutcomeOK))

	stats, err := svc.GetStats("dev")
	if err != nil {
		t.Fatalf("GetStats returned error: %v", err)
	}
	if math.Abs(stats.SuccessRate-50.0) > 0.0001 {
		t.Errorf("expected success ≈ 50, got %f", stats.SuccessRate)
	}
	if stats.AvgDuration != "5s" {
		t.Errorf("expected avg 5s, got %s", stats.AvgDuration)
	}
	if stats.LastRunID != "d" || stats.LastOutcome != "ok" {
		t.Errorf("unexpected last run %q/%s", stats.LastRunID, stats.LastOutcome)
	}
}

func TestGetStats_UnknownDevice(t *testing.T) {
	svc := NewStatsService(newFakeStatsRepo())

	if _, err := svc.GetStats("nope"); !errors.Is(err, coreerrors.ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}

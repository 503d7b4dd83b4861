package ports

import (
	"time"

	"biosync/internal/core/domain"
)

type Stats struct {
	Runs        int64
	Failures    int64
	Partial     int64
	SuccessRate float64
	AvgDuration string
	LastRun     time.Time
	LastRunID   string
	LastOutcome string
}

// RunRecorder receives every finished sync run.
type RunRecorder interface {
	RecordRun(r domain.RunRecord) error
}

// StatsService is used by the sync service and the HTTP layer.
type StatsService interface {
	RunRecorder
	GetStats(deviceID string) (*Stats, error)
}

// RunStatsRepository is the persistence port used by the stats service.
type RunStatsRepository interface {
	WithDevice(id string, fn func(s *domain.RunStats) error) error
	GetSnapshot(id string) (*domain.RunStats, error)
}

// Package memory keeps per-device sync run statistics for the life of the
// process.
package memory

import (
	"sync"

	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
)

type RunStatsRepository struct {
	mu      sync.RWMutex
	devices map[string]*domain.RunStats
}

// NewRunStatsRepository creates an empty in-memory RunStatsRepository.
func NewRunStatsRepository() *RunStatsRepository {
	return &RunStatsRepository{
		devices: make(map[string]*domain.RunStats),
	}
}

func (r *RunStatsRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// WithDevice finds (or creates) a device by id and executes fn while holding
// a write lock on the underlying map, so read-modify-write updates are atomic.
func (r *RunStatsRepository) WithDevice(id string, fn func(s *domain.RunStats) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.devices[id]
	if !ok {
		s = domain.NewRunStats(id)
		r.devices[id] = s
	}
	return fn(s)
}

func (r *RunStatsRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.devices[id]
	return ok
}

func (r *RunStatsRepository) GetSnapshot(id string) (*domain.RunStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.devices[id]
	if !ok {
		return nil, coreerrors.ErrNoRuns
	}
	statsCopy := *stats
	return &statsCopy, nil
}

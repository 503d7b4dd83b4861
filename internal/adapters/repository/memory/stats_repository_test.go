package memory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
)

// -----------------------------------------------------------------------------
// Tests for WithDevice
// -----------------------------------------------------------------------------

func TestWithDevice_CreatesAndMutatesDevice(t *testing.T) {
	repo := NewRunStatsRepository()
	id := "uFace800-Main"

	// First call should auto-create the entry.
	if err := repo.WithDevice(id, func(s *domain.RunStats) error {
		if s.DeviceID != id {
			t.Errorf("expected DeviceID=%q, got %q", id, s.DeviceID)
		}
		s.Runs++
		return nil
	}); err != nil {
		t.Fatalf("WithDevice returned error on first call: %v", err)
	}

	if err := repo.WithDevice(id, func(s *domain.RunStats) error {
		s.Runs++
		return nil
	}); err != nil {
		t.Fatalf("WithDevice returned error on second call: %v", err)
	}

	snap, err := repo.GetSnapshot(id)
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}
	if snap.Runs != 2 {
		t.Errorf("expected Runs=2 after two increments, got %d", snap.Runs)
	}
	if repo.Count() != 1 {
		t.Errorf("expected 1 device, got %d", repo.Count())
	}
}

func TestWithDevice_PropagatesErrorFromCallback(t *testing.T) {
	repo := NewRunStatsRepository()
	wantErr := errors.New("boom")

	err := repo.WithDevice("dev-err", func(s *domain.RunStats) error {
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected WithDevice to return callback error %v, got %v", wantErr, err)
	}
}

func TestWithDevice_ConcurrentUpdatesAreNotLost(t *testing.T) {
	repo := NewRunStatsRepository()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.WithDevice("dev-1", func(s *domain.RunStats) error {
				s.Runs++
				return nil
			})
		}()
	}
	wg.Wait()

	snap, err := repo.GetSnapshot("dev-1")
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}
	if snap.Runs != 50 {
		t.Fatalf("expected 50 runs, got %d", snap.Runs)
	}
}

// -----------------------------------------------------------------------------
// Tests for Exists
// -----------------------------------------------------------------------------

func TestExists_TrueAfterWithDeviceFalseOtherwise(t *testing.T) {
	repo := NewRunStatsRepository()
	id := "dev-1"

	if repo.Exists(id) {
		t.Fatalf("expected Exists(%q) to be false before any creation", id)
	}

	if err := repo.WithDevice(id, func(s *domain.RunStats) error {
		return nil
	}); err != nil {
		t.Fatalf("WithDevice returned error: %v", err)
	}

	if !repo.Exists(id) {
		t.Fatalf("expected Exists(%q) to be true after WithDevice", id)
	}
}

// -----------------------------------------------------------------------------
// Tests for GetSnapshot
// -----------------------------------------------------------------------------

func TestGetSnapshot_NotFoundReturnsErrNoRuns(t *testing.T) {
	repo := NewRunStatsRepository()

	snap, err := repo.GetSnapshot("missing-id")
	if !errors.Is(err, coreerrors.ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
	if snap != nil {
		t.Fatalf("expected snapshot to be nil when error is returned, got %+v", snap)
	}
}

func TestGetSnapshot_ReturnsCopyNotOriginal(t *testing.T) {
	repo := NewRunStatsRepository()
	id := "dev-1"

	if err := repo.WithDevice(id, func(s *domain.RunStats) error {
		s.Runs = 5
		s.FirstRun = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		s.LastRun = s.FirstRun.Add(10 * time.Minute)
		return nil
	}); err != nil {
		t.Fatalf("WithDevice returned error: %v", err)
	}

	snap1, err := repo.GetSnapshot(id)
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}
	snap1.Runs = 999

	snap2, err := repo.GetSnapshot(id)
	if err != nil {
		t.Fatalf("GetSnapshot returned error: %v", err)
	}
	if snap2.Runs != 5 {
		t.Fatalf("expected underlying Runs to remain 5, got %d", snap2.Runs)
	}
}

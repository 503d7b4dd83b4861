package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biosync/internal/core/domain"
	"biosync/internal/testutil"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countRecords(t *testing.T, s *Store) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&AttendanceRecordModel{}).Count(&n).Error)
	return n
}

func TestExport_InsertsEmployeesRecordsAndRun(t *testing.T) {
	s := openTemp(t)
	res := testutil.SampleResult(domain.DayPositional{MiddleCutoff: 12})

	require.NoError(t, s.Export(context.Background(), res))

	assert.Equal(t, int64(res.Metadata.TotalRecords), countRecords(t, s))

	var employees int64
	require.NoError(t, s.db.Model(&EmployeeModel{}).Count(&employees).Error)
	assert.Equal(t, int64(3), employees)

	run, err := s.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Metadata.RunID, run.RunID)
	assert.Equal(t, domain.StrategyDayPositional, run.Strategy)
}

func TestExport_RepeatIsIdempotent(t *testing.T) {
	s := openTemp(t)
	res := testutil.SampleResult(domain.ClockHour{Cutoff: 15})

	require.NoError(t, s.Export(context.Background(), res))
	require.NoError(t, s.Export(context.Background(), res))

	assert.Equal(t, int64(res.Metadata.TotalRecords), countRecords(t, s))
}

func TestMonthRecords_Chronological(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Export(context.Background(), testutil.SampleResult(domain.ClockHour{Cutoff: 15})))

	recs, err := s.MonthRecords(context.Background(), "7", "2025-12")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i := 1; i < len(recs); i++ {
		assert.False(t, recs[i].Timestamp.Before(recs[i-1].Timestamp))
	}
	assert.Equal(t, "check-out", recs[2].Type)
}

func TestExport_RelabelledPunchReplacesRow(t *testing.T) {
	s := openTemp(t)
	strategy := domain.DayPositional{MiddleCutoff: 12}
	at := func(h int) domain.RawPunch {
		return domain.RawPunch{EmployeeID: 7, Timestamp: time.Date(2026, 1, 6, h, 0, 0, 0, time.UTC)}
	}

	morning := []domain.RawPunch{at(7), at(10)}
	require.NoError(t, s.Export(context.Background(), testutil.Reconcile(morning, strategy)))

	fullDay := append(morning, at(17))
	require.NoError(t, s.Export(context.Background(), testutil.Reconcile(fullDay, strategy)))

	recs, err := s.MonthRecords(context.Background(), "7", "2026-01")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	var got []string
	for _, r := range recs {
		got = append(got, r.Time+" "+r.Type)
	}
	assert.Equal(t, []string{"07:00:00 check-in", "10:00:00 check-in", "17:00:00 check-out"}, got)
	assert.Equal(t, "7_20260106_100000_check-in", recs[1].ID)
}

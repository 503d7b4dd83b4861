// Package testutil builds deterministic reconciled runs for adapter tests.
package testutil

import (
	"time"

	"biosync/internal/core/domain"
)

// FixedNow is the LastSync stamp used by SampleResult.
var FixedNow = time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)

// SampleStart is the start-date filter used by SampleResult.
var SampleStart = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

// SamplePunches covers two months, a repeat, an unknown status code and an
// employee missing from the directory.
func SamplePunches() []domain.RawPunch {
	d := func(month time.Month, day, h, m int) time.Time {
		year := 2025
		if month < 12 {
			year = 2026
		}
		return time.Date(year, month, day, h, m, 0, 0, time.UTC)
	}
	return []domain.RawPunch{
		{EmployeeID: 1, Timestamp: d(12, 30, 7, 55), StatusCode: 0},
		{EmployeeID: 1, Timestamp: d(12, 30, 16, 10), StatusCode: 1},
		{EmployeeID: 1, Timestamp: d(12, 30, 16, 10), StatusCode: 1},
		{EmployeeID: 1, Timestamp: d(1, 2, 8, 5), StatusCode: 15},
		{EmployeeID: 7, Timestamp: d(12, 31, 7, 10), StatusCode: 0},
		{EmployeeID: 7, Timestamp: d(12, 31, 12, 40), StatusCode: 4},
		{EmployeeID: 7, Timestamp: d(12, 31, 17, 5), StatusCode: 5},
		{EmployeeID: 42, Timestamp: d(1, 3, 9, 0), StatusCode: 9},
	}
}

// SampleDirectory names employees 1 and 7 only.
func SampleDirectory() []domain.DirectoryEntry {
	return []domain.DirectoryEntry{
		{ID: 1, Name: "Anwar hussain"},
		{ID: 7, Name: "Sara Ali"},
	}
}

// SampleResult reconciles SamplePunches with strategy the same way the sync
// service does.
func SampleResult(strategy domain.Strategy) *domain.SyncResult {
	return Reconcile(SamplePunches(), strategy)
}

// Reconcile runs punches against SampleDirectory and SampleStart.
func Reconcile(punches []domain.RawPunch, strategy domain.Strategy) *domain.SyncResult {
	dir := domain.NewDirectory(SampleDirectory())
	unique := domain.Dedup(domain.FilterSince(punches, SampleStart))
	events := domain.BuildEvents(unique, domain.Classify(unique, strategy), "uFace800-Main")

	agg := domain.NewAggregator(dir)
	agg.Add(events...)
	attendance := agg.Result()

	meta := domain.Summarize(domain.SyncMetadata{
		RunID:     "0190d5a8-0000-7000-8000-000000000001",
		LastSync:  FixedNow,
		StartDate: SampleStart,
		DeviceID:  "uFace800-Main",
		Strategy:  strategy.Name(),
	}, attendance)

	return &domain.SyncResult{Metadata: meta, Directory: dir.Employees(), Attendance: attendance}
}

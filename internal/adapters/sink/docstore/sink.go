// Package docstore exports a run into a document database as nested
// collections:
//
//	employees/{emp_<id>_<name>}
//	employees/{emp}/attendance/{YYYY-MM}
//	employees/{emp}/attendance/{YYYY-MM}/records/{date_HHMMSS}
//	sync-metadata/last-sync
//
// Every document is written with replace-or-insert semantics keyed by its
// full path, so exporting the same run twice is harmless. Records are keyed
// by the punch rather than its label, so a punch relabelled by a later run
// replaces its earlier document.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"biosync/internal/core/domain"
	"biosync/pkg/utils"
)

// Path addresses a document as alternating collection/document segments.
type Path []string

func (p Path) Collection() string { return p[len(p)-2] }

func (p Path) ID() string { return strings.Join(p, "/") }

// Child addresses a document in a sub-collection of p.
func (p Path) Child(collection, id string) Path {
	out := make(Path, 0, len(p)+2)
	return append(append(out, p...), collection, id)
}

func Doc(collection, id string) Path { return Path{collection, id} }

// DocumentWriter upserts a single document at a path.
type DocumentWriter interface {
	Put(ctx context.Context, path Path, doc map[string]any) error
}

type Sink struct {
	w DocumentWriter
}

func NewSink(w DocumentWriter) *Sink {
	return &Sink{w: w}
}

func (s *Sink) Name() string { return "docstore" }

func (s *Sink) Export(ctx context.Context, result *domain.SyncResult) error {
	syncedAt := result.Metadata.LastSync

	for i := range result.Attendance {
		emp := &result.Attendance[i]
		empPath := Doc("employees", utils.EmployeeKey(emp.Profile.ID, emp.Profile.Name))

		if err := s.w.Put(ctx, empPath, map[string]any{
			"profile": map[string]any{
				"fullName":     emp.Profile.Name,
				"userId":       emp.Profile.ID,
				"department":   emp.Profile.Department,
				"position":     emp.Profile.Position,
				"lastSyncedAt": syncedAt,
			},
		}); err != nil {
			return fmt.Errorf("employee %s: %w", emp.Profile.ID, err)
		}

		for _, month := range emp.MonthKeys() {
			bucket := emp.Months[month]
			monthPath := empPath.Child("attendance", month)
			if err := s.w.Put(ctx, monthPath, monthDoc(month, bucket)); err != nil {
				return fmt.Errorf("employee %s month %s: %w", emp.Profile.ID, month, err)
			}
			for _, ev := range bucket {
				if err := s.w.Put(ctx, monthPath.Child("records", RecordID(ev)), recordDoc(ev, syncedAt)); err != nil {
					return fmt.Errorf("record %s: %w", ev.ID, err)
				}
			}
		}
	}

	m := result.Metadata
	return s.w.Put(ctx, Doc("sync-metadata", "last-sync"), map[string]any{
		"timestamp":      m.LastSync,
		"runId":          m.RunID,
		"totalEmployees": m.TotalEmployees,
		"totalRecords":   m.TotalRecords,
		"totalCheckins":  m.TotalCheckins,
		"totalCheckouts": m.TotalCheckouts,
		"totalUnknown":   m.TotalUnknown,
		"startDate":      m.StartDate,
		"deviceId":       m.DeviceID,
		"strategy":       m.Strategy,
	})
}

// RecordID is date_HHMMSS, unique within an employee's month because punches
// are deduplicated per employee and second.
func RecordID(ev domain.AttendanceEvent) string {
	return ev.Date + "_" + strings.ReplaceAll(ev.Time, ":", "")
}

func monthDoc(month string, bucket domain.MonthlyBucket) map[string]any {
	counts := map[domain.EventType]int{}
	for _, ev := range bucket {
		counts[ev.Type]++
	}
	return map[string]any{
		"month":     month,
		"total":     len(bucket),
		"checkins":  counts[domain.CheckIn],
		"checkouts": counts[domain.CheckOut],
		"unknown":   counts[domain.Unknown],
	}
}

func recordDoc(ev domain.AttendanceEvent, syncedAt time.Time) map[string]any {
	return map[string]any{
		"eventId":    ev.ID,
		"employeeId": ev.EmployeeID,
		"timestamp":  ev.Timestamp,
		"date":       ev.Date,
		"time":       ev.Time,
		"type":       string(ev.Type),
		"statusCode": ev.StatusCode,
		"statusDesc": ev.Type.Description(),
		"deviceId":   ev.DeviceID,
		"syncedAt":   syncedAt,
	}
}

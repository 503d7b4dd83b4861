package http

import (
	"time"

	"biosync/internal/core/domain"
)

type ErrorResponse struct {
	Msg string `json:"msg"`
}

// SyncResponse is returned by GET /api/sync. A successful run always carries
// both lists, empty when nothing was punched.
type SyncResponse struct {
	Success   bool                     `json:"success"`
	RunID     string                   `json:"runId,omitempty"`
	Employees []domain.Employee        `json:"employees"`
	Records   []domain.AttendanceEvent `json:"records"`
	Timestamp *time.Time               `json:"timestamp,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Protocol string `json:"protocol"`
	Mode     string `json:"mode"`
	Device   string `json:"device"`
	Safety   string `json:"safety"`
}

type StatsResponse struct {
	Device      string    `json:"device"`
	Runs        int64     `json:"runs"`
	Failures    int64     `json:"failures"`
	Partial     int64     `json:"partial"`
	SuccessRate float64   `json:"success_rate"`
	AvgDuration string    `json:"avg_duration"`
	LastRun     time.Time `json:"last_run"`
	LastRunID   string    `json:"last_run_id"`
	LastOutcome string    `json:"last_outcome"`
}

type EmployeesResponse struct {
	Employees []domain.Employee    `json:"employees"`
	LastSync  *domain.SyncMetadata `json:"lastSync,omitempty"`
}

type AttendanceResponse struct {
	Profile    domain.Employee                 `json:"profile"`
	Attendance map[string]domain.MonthlyBucket `json:"attendance"`
	CheckIns   int                             `json:"checkins"`
	CheckOuts  int                             `json:"checkouts"`
	Unknown    int                             `json:"unknown"`
}

func newSyncResponse(res *domain.SyncResult) SyncResponse {
	ts := res.Metadata.LastSync
	employees := res.Directory
	if employees == nil {
		employees = []domain.Employee{}
	}
	records := res.Events()
	if records == nil {
		records = []domain.AttendanceEvent{}
	}
	return SyncResponse{
		Success:   true,
		RunID:     res.Metadata.RunID,
		Employees: employees,
		Records:   records,
		Timestamp: &ts,
	}
}

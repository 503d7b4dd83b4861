package domain

import (
	"fmt"
	"time"
)

// EventType is the check-in/check-out label attached to a punch.
type EventType string

const (
	CheckIn  EventType = "check-in"
	CheckOut EventType = "check-out"
	Unknown  EventType = "unknown"
)

// Description is the human readable label used in exports.
func (t EventType) Description() string {
	switch t {
	case CheckIn:
		return "Check In"
	case CheckOut:
		return "Check Out"
	default:
		return "Unspecified"
	}
}

const (
	DefaultDepartment = "Not Specified"
	DefaultPosition   = "Staff"

	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04:05"
	MonthLayout = "2006-01"
)

// RawPunch is a single scan as reported by the device.
type RawPunch struct {
	EmployeeID int
	Timestamp  time.Time
	StatusCode int
}

// DirectoryEntry is one user record from the device directory.
type DirectoryEntry struct {
	ID   int
	Name string
}

// Employee is the exported profile. The device only knows names, so
// department and position carry fixed placeholders.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// AttendanceEvent is a labelled, deduplicated punch.
type AttendanceEvent struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	StatusCode int       `json:"statusCode"`
	DeviceID   string    `json:"deviceId"`
}

// MonthKey returns the YYYY-MM bucket the event belongs to.
func (e AttendanceEvent) MonthKey() string {
	return e.Timestamp.Format(MonthLayout)
}

// MonthlyBucket holds one employee's events for one month, oldest first.
type MonthlyBucket []AttendanceEvent

// SyncMetadata describes one run. It is overwritten on every run.
type SyncMetadata struct {
	RunID          string    `json:"runId"`
	LastSync       time.Time `json:"lastSync"`
	TotalEmployees int       `json:"totalEmployees"`
	TotalRecords   int       `json:"totalRecords"`
	TotalCheckins  int       `json:"totalCheckins"`
	TotalCheckouts int       `json:"totalCheckouts"`
	TotalUnknown   int       `json:"totalUnknown"`
	StartDate      time.Time `json:"startDate"`
	DeviceID       string    `json:"deviceId"`
	Strategy       string    `json:"strategy"`
}

// SyncResult is the reconciled model handed to sinks.
type SyncResult struct {
	Metadata   SyncMetadata
	Directory  []Employee
	Attendance []EmployeeAttendance
}

// Events flattens every employee's buckets in employee, month, then time order.
func (r *SyncResult) Events() []AttendanceEvent {
	var out []AttendanceEvent
	for i := range r.Attendance {
		out = append(out, r.Attendance[i].Events()...)
	}
	return out
}

// EventID builds the idempotence key for a labelled punch. Re-processing the
// same punch with the same strategy always yields the same id.
func EventID(employeeID string, ts time.Time, t EventType) string {
	return fmt.Sprintf("%s_%s_%s", employeeID, ts.Format("20060102_150405"), t)
}

// NewEvent labels p and stamps it with the device identity.
func NewEvent(p RawPunch, t EventType, deviceID string) AttendanceEvent {
	empID := fmt.Sprintf("%d", p.EmployeeID)
	ts := p.Timestamp.Truncate(time.Second)
	return AttendanceEvent{
		ID:         EventID(empID, ts, t),
		EmployeeID: empID,
		Date:       ts.Format(DateLayout),
		Time:       ts.Format(TimeLayout),
		Timestamp:  ts,
		Type:       t,
		StatusCode: p.StatusCode,
		DeviceID:   deviceID,
	}
}

package sqlstore

import "time"

type EmployeeModel struct {
	ID           string    `gorm:"primaryKey;size:32"`
	Name         string    `gorm:"size:255;not null"`
	Department   string    `gorm:"size:120"`
	Position     string    `gorm:"size:120"`
	LastSyncedAt time.Time `gorm:"not null"`
}

func (EmployeeModel) TableName() string { return "employees" }

// AttendanceRecordModel holds one row per physical punch. Employee, date and
// time identify the punch; id and type follow the latest label.
type AttendanceRecordModel struct {
	ID         string    `gorm:"primaryKey;size:96"`
	EmployeeID string    `gorm:"size:32;not null;index:idx_attendance_employee_month,priority:1;uniqueIndex:uniq_attendance_punch,priority:1"`
	Month      string    `gorm:"size:7;not null;index:idx_attendance_employee_month,priority:2"`
	Date       string    `gorm:"size:10;not null;uniqueIndex:uniq_attendance_punch,priority:2"`
	Time       string    `gorm:"size:8;not null;uniqueIndex:uniq_attendance_punch,priority:3"`
	Timestamp  time.Time `gorm:"not null;index"`
	Type       string    `gorm:"size:16;not null"`
	StatusCode int       `gorm:"not null"`
	DeviceID   string    `gorm:"size:64;not null"`
	RunID      string    `gorm:"size:64"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

// SyncRunModel keeps one row per run, keyed by run id.
type SyncRunModel struct {
	RunID          string    `gorm:"primaryKey;size:64"`
	LastSync       time.Time `gorm:"not null;index"`
	TotalEmployees int
	TotalRecords   int
	TotalCheckins  int
	TotalCheckouts int
	TotalUnknown   int
	StartDate      time.Time
	DeviceID       string `gorm:"size:64"`
	Strategy       string `gorm:"size:32"`
}

func (SyncRunModel) TableName() string { return "sync_runs" }

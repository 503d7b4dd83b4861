package ports

import (
	"context"

	"biosync/internal/core/domain"
)

// Device is the time clock the sync reads from. Connect hands back an
// exclusive session; the caller owns releasing it.
type Device interface {
	ID() string
	Address() string
	Connect(ctx context.Context) (DeviceConn, error)
}

// DeviceConn is an open, read-only device session. Enable must be called
// before Disconnect on every path so the device keeps serving users.
type DeviceConn interface {
	Directory(ctx context.Context) ([]domain.DirectoryEntry, error)
	Punches(ctx context.Context) ([]domain.RawPunch, error)
	Enable(ctx context.Context) error
	Disconnect() error
}

// Sink receives the reconciled model. Exports must be idempotent per
// AttendanceEvent.ID.
type Sink interface {
	Name() string
	Export(ctx context.Context, result *domain.SyncResult) error
}

// SyncService is the main port used by the HTTP and CLI layers.
type SyncService interface {
	Sync(ctx context.Context) (*domain.SyncResult, error)
	DeviceID() string
}

// AttendanceReader reads back what a previous run stored.
type AttendanceReader interface {
	Employees() ([]domain.Employee, error)
	Attendance(employeeID string) (*domain.EmployeeAttendance, error)
	Metadata() (*domain.SyncMetadata, error)
}

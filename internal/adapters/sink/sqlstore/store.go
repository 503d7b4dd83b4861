package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"biosync/internal/core/domain"
)

const batchSize = 500

// Store archives runs in a relational database. Records are upserted per
// punch so a re-run that relabels a punch replaces its row; employees are
// upserted by id.
type Store struct {
	db *gorm.DB
}

// Open picks postgres for postgres:// or postgresql:// DSNs and sqlite for
// anything else, then migrates the schema.
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&EmployeeModel{}, &AttendanceRecordModel{}, &SyncRunModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Name() string { return "sql" }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Export writes the run in a single transaction.
func (s *Store) Export(ctx context.Context, result *domain.SyncResult) error {
	meta := result.Metadata

	var employees []EmployeeModel
	var records []AttendanceRecordModel
	for i := range result.Attendance {
		emp := &result.Attendance[i]
		employees = append(employees, EmployeeModel{
			ID:           emp.Profile.ID,
			Name:         emp.Profile.Name,
			Department:   emp.Profile.Department,
			Position:     emp.Profile.Position,
			LastSyncedAt: meta.LastSync,
		})
		for _, ev := range emp.Events() {
			records = append(records, AttendanceRecordModel{
				ID:         ev.ID,
				EmployeeID: ev.EmployeeID,
				Month:      ev.MonthKey(),
				Date:       ev.Date,
				Time:       ev.Time,
				Timestamp:  ev.Timestamp,
				Type:       string(ev.Type),
				StatusCode: ev.StatusCode,
				DeviceID:   ev.DeviceID,
				RunID:      meta.RunID,
			})
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(employees) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "department", "position", "last_synced_at"}),
			}).CreateInBatches(employees, batchSize).Error; err != nil {
				return fmt.Errorf("upsert employees: %w", err)
			}
		}
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "employee_id"}, {Name: "date"}, {Name: "time"}},
				DoUpdates: clause.AssignmentColumns([]string{"id", "type", "status_code", "device_id", "run_id"}),
			}).CreateInBatches(records, batchSize).Error; err != nil {
				return fmt.Errorf("upsert records: %w", err)
			}
		}
		run := SyncRunModel{
			RunID:          meta.RunID,
			LastSync:       meta.LastSync,
			TotalEmployees: meta.TotalEmployees,
			TotalRecords:   meta.TotalRecords,
			TotalCheckins:  meta.TotalCheckins,
			TotalCheckouts: meta.TotalCheckouts,
			TotalUnknown:   meta.TotalUnknown,
			StartDate:      meta.StartDate,
			DeviceID:       meta.DeviceID,
			Strategy:       meta.Strategy,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&run).Error; err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		return nil
	})
}

// LatestRun returns the most recent run row.
func (s *Store) LatestRun(ctx context.Context) (*SyncRunModel, error) {
	var run SyncRunModel
	if err := s.db.WithContext(ctx).Order("last_sync desc").First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// MonthRecords lists one employee's stored records for a month, oldest first.
func (s *Store) MonthRecords(ctx context.Context, employeeID, month string) ([]AttendanceRecordModel, error) {
	var out []AttendanceRecordModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND month = ?", employeeID, month).
		Order("timestamp asc").
		Find(&out).Error
	return out, err
}

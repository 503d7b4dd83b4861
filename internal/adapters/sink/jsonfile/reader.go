package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
)

// Reader serves data written by Sink.
type Reader struct {
	dir string
}

func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Load returns every stored employee with counts recomputed from the
// stored labels, ordered by id.
func (r *Reader) Load() ([]domain.EmployeeAttendance, error) {
	paths, err := filepath.Glob(filepath.Join(r.dir, employeesDir, "emp_*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if _, statErr := os.Stat(filepath.Join(r.dir, employeesDir)); errors.Is(statErr, os.ErrNotExist) {
			return nil, coreerrors.ErrNoData
		}
	}

	out := make([]domain.EmployeeAttendance, 0, len(paths))
	for _, p := range paths {
		emp, err := readEmployee(p)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	slices.SortFunc(out, func(a, b domain.EmployeeAttendance) int {
		return domain.CompareEmployeeIDs(a.Profile.ID, b.Profile.ID)
	})
	return out, nil
}

func (r *Reader) Employees() ([]domain.Employee, error) {
	all, err := r.Load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Employee, 0, len(all))
	for _, e := range all {
		out = append(out, e.Profile)
	}
	return out, nil
}

func (r *Reader) Attendance(employeeID string) (*domain.EmployeeAttendance, error) {
	paths, err := filepath.Glob(filepath.Join(r.dir, employeesDir, "emp_"+employeeID+"_*.json"))
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		emp, err := readEmployee(p)
		if err != nil {
			return nil, err
		}
		if emp.Profile.ID == employeeID {
			return emp, nil
		}
	}
	return nil, coreerrors.ErrEmployeeNotFound
}

func (r *Reader) Metadata() (*domain.SyncMetadata, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, metadataFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, coreerrors.ErrNoData
	}
	if err != nil {
		return nil, err
	}
	var m domain.SyncMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", metadataFile, err)
	}
	return &m, nil
}

func readEmployee(path string) (*domain.EmployeeAttendance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc employeeFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	emp := &domain.EmployeeAttendance{Profile: doc.Profile, Months: doc.Attendance}
	if emp.Months == nil {
		emp.Months = map[string]domain.MonthlyBucket{}
	}
	for _, bucket := range emp.Months {
		for _, ev := range bucket {
			switch ev.Type {
			case domain.CheckIn:
				emp.CheckIns++
			case domain.CheckOut:
				emp.CheckOuts++
			default:
				emp.Unknown++
			}
		}
	}
	return emp, nil
}

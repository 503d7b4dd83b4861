// Package jsonfile stores a run as one JSON document per employee plus a
// run-level metadata file, and reads that layout back.
//
//	<dir>/employees/emp_<id>_<name>.json   {profile, attendance{YYYY-MM: [...]}}
//	<dir>/sync_metadata.json               SyncMetadata
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"biosync/internal/core/domain"
	"biosync/pkg/utils"
)

const (
	employeesDir = "employees"
	metadataFile = "sync_metadata.json"
)

type employeeFile struct {
	Profile    domain.Employee                 `json:"profile"`
	Attendance map[string]domain.MonthlyBucket `json:"attendance"`
}

// Sink writes the per-employee layout under dir.
type Sink struct {
	dir string
}

func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

func (s *Sink) Name() string { return "json" }

// Export overwrites each employee's file and the metadata file and drops
// files of employees absent from result. Writing the same result twice
// leaves identical files behind.
func (s *Sink) Export(ctx context.Context, result *domain.SyncResult) error {
	empDir := filepath.Join(s.dir, employeesDir)
	if err := os.MkdirAll(empDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", empDir, err)
	}

	written := make(map[string]bool, len(result.Attendance))
	for i := range result.Attendance {
		if err := ctx.Err(); err != nil {
			return err
		}
		emp := &result.Attendance[i]
		name := FileName(emp.Profile)
		if err := removeStale(empDir, emp.Profile.ID, name); err != nil {
			return err
		}
		doc := employeeFile{Profile: emp.Profile, Attendance: emp.Months}
		if err := writeJSON(filepath.Join(empDir, name), doc); err != nil {
			return err
		}
		written[name] = true
	}
	if err := prune(empDir, written); err != nil {
		return err
	}

	return writeJSON(filepath.Join(s.dir, metadataFile), result.Metadata)
}

// prune removes employee files left by earlier runs whose employees have no
// events in this one, so the directory always matches the metadata.
func prune(dir string, keep map[string]bool) error {
	matches, err := filepath.Glob(filepath.Join(dir, "emp_*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if keep[filepath.Base(m)] {
			continue
		}
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", m, err)
		}
	}
	return nil
}

// FileName is emp_<id>_<safe name>.json.
func FileName(e domain.Employee) string {
	return utils.EmployeeKey(e.ID, e.Name) + ".json"
}

// removeStale drops files left over from a previous run in which the same
// employee had a different name.
func removeStale(dir, id, keep string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "emp_"+id+"_*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if filepath.Base(m) == keep {
			continue
		}
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s: %w", m, err)
		}
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSON replaces path atomically so readers never see half a file.
func writeJSON(path string, v any) error {
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+strings.TrimSuffix(filepath.Base(path), ".json")+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

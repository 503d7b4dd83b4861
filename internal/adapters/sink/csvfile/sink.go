package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"biosync/internal/core/domain"
)

const (
	LayoutBasic    = "basic"
	LayoutDetailed = "detailed"
)

var (
	basicHeader    = []string{"employeeId", "name", "datetime", "statusCode"}
	detailedHeader = []string{"employeeId", "name", "date", "time", "statusCode", "type", "statusDescription"}
)

// Sink writes one Attendance_<YYYY-MM>.csv per month, UTF-8 with a BOM so
// spreadsheet tools pick the right encoding.
type Sink struct {
	dir    string
	layout string
}

func NewSink(dir, layout string) *Sink {
	if layout != LayoutBasic {
		layout = LayoutDetailed
	}
	return &Sink{dir: dir, layout: layout}
}

func (s *Sink) Name() string { return "csv" }

type row struct {
	name string
	ev   domain.AttendanceEvent
}

func (s *Sink) Export(ctx context.Context, result *domain.SyncResult) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}

	months := map[string][]row{}
	for i := range result.Attendance {
		emp := &result.Attendance[i]
		for key, bucket := range emp.Months {
			for _, ev := range bucket {
				months[key] = append(months[key], row{name: emp.Profile.Name, ev: ev})
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(months)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows := months[key]
		slices.SortStableFunc(rows, func(a, b row) int {
			if c := a.ev.Timestamp.Compare(b.ev.Timestamp); c != 0 {
				return c
			}
			return domain.CompareEmployeeIDs(a.ev.EmployeeID, b.ev.EmployeeID)
		})
		if err := s.writeMonth(FileName(key), rows); err != nil {
			return err
		}
	}
	return nil
}

// FileName is the monthly CSV name for a YYYY-MM key.
func FileName(month string) string {
	return "Attendance_" + month + ".csv"
}

func (s *Sink) writeMonth(name string, rows []row) (err error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bom := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(bom)

	header := detailedHeader
	if s.layout == LayoutBasic {
		header = basicHeader
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(s.record(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return bom.Close()
}

func (s *Sink) record(r row) []string {
	status := strconv.Itoa(r.ev.StatusCode)
	if s.layout == LayoutBasic {
		return []string{r.ev.EmployeeID, r.name, r.ev.Date + " " + r.ev.Time, status}
	}
	return []string{
		r.ev.EmployeeID,
		r.name,
		r.ev.Date,
		r.ev.Time,
		status,
		string(r.ev.Type),
		r.ev.Type.Description(),
	}
}

package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"biosync/internal/adapters/device/memory"
	statsmemory "biosync/internal/adapters/repository/memory"
	"biosync/internal/adapters/sink/jsonfile"
	"biosync/internal/core/domain"
	"biosync/internal/core/ports"
	"biosync/internal/core/services"
)

const integrationFixture = `employee_id,name_or_timestamp,status
1,Anwar hussain
7,Sara Ali
1,2025-11-28 08:00:00,0
7,2025-12-31 07:10:00,0
7,2025-12-31 12:40:00,4
7,2025-12-31 12:40:00,4
7,2025-12-31 17:05:00,5
1,2026-01-02 08:05:00,15
42,2026-01-03 09:00:00,9
`

// newIntegrationServer wires the CSV-fixture device, the real sync service,
// the JSON file sink and its reader into a Gin engine.
func newIntegrationServer(t *testing.T) (*gin.Engine, *memory.Device) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dev := memory.NewDevice("uFace800-Main", time.UTC)
	if err := dev.Load(strings.NewReader(integrationFixture)); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	dir := t.TempDir()
	stats := services.NewStatsService(statsmemory.NewRunStatsRepository())
	svc := services.NewSyncService(dev, []ports.Sink{jsonfile.NewSink(dir)}, services.Options{
		StartDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		Guard:     services.NewDeviceGuard(),
		Recorder:  stats,
	})

	r := gin.New()
	RegisterRoutes(r, svc, jsonfile.NewReader(dir), stats, "CSV fixture")

	return r, dev
}

func TestIntegration_StoredDataBeforeFirstSyncReturns404(t *testing.T) {
	r, _ := newIntegrationServer(t)

	if w := get(t, r, "/api/employees"); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before any sync, got %d", w.Code)
	}
}

func TestIntegration_SyncThenReadBack(t *testing.T) {
	r, dev := newIntegrationServer(t)

	w := get(t, r, "/api/sync")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var syncResp SyncResponse
	if err := json.Unmarshal(w.Body.Bytes(), &syncResp); err != nil {
		t.Fatalf("failed to decode sync response: %v", err)
	}
	// the November punch is before the start date and one 12:40 punch is a repeat
	if len(syncResp.Records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(syncResp.Records))
	}

	if dev.OpenSessions() != 0 {
		t.Errorf("expected device session to be released, %d open", dev.OpenSessions())
	}
	if dev.Enables() != 1 {
		t.Errorf("expected device to be re-enabled once, got %d", dev.Enables())
	}

	w = get(t, r, "/api/employees")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var empResp EmployeesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &empResp); err != nil {
		t.Fatalf("failed to decode employees response: %v", err)
	}
	if len(empResp.Employees) != 3 {
		t.Fatalf("expected 3 employees, got %d", len(empResp.Employees))
	}
	if empResp.Employees[2].Name != "User 42" {
		t.Errorf("expected placeholder name for employee 42, got %q", empResp.Employees[2].Name)
	}

	w = get(t, r, "/api/employees/7/attendance")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var attResp AttendanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &attResp); err != nil {
		t.Fatalf("failed to decode attendance response: %v", err)
	}
	events := attResp.Attendance["2025-12"]
	if len(events) != 3 {
		t.Fatalf("expected 3 December events, got %d", len(events))
	}
	wantTypes := []domain.EventType{domain.CheckIn, domain.CheckOut, domain.CheckOut}
	for i, ev := range events {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d: expected %s, got %s", i, wantTypes[i], ev.Type)
		}
	}
}

func TestIntegration_RepeatedSyncIsStable(t *testing.T) {
	r, _ := newIntegrationServer(t)

	var first, second SyncResponse
	for _, out := range []*SyncResponse{&first, &second} {
		w := get(t, r, "/api/sync")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}

	if len(first.Records) != len(second.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i].ID != second.Records[i].ID {
			t.Errorf("record %d: id %s vs %s", i, first.Records[i].ID, second.Records[i].ID)
		}
	}
	if first.RunID == second.RunID {
		t.Errorf("expected distinct run ids")
	}

	w := get(t, r, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 from stats, got %d", w.Code)
	}
	var stats StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats response: %v", err)
	}
	if stats.Runs != 2 || stats.Failures != 0 {
		t.Errorf("expected 2 clean runs, got runs=%d failures=%d", stats.Runs, stats.Failures)
	}
	if stats.LastRunID != second.RunID {
		t.Errorf("expected last run %s, got %s", second.RunID, stats.LastRunID)
	}
}

func TestIntegration_StatsBeforeAnyRunReturns404(t *testing.T) {
	r, _ := newIntegrationServer(t)

	if w := get(t, r, "/api/stats"); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before any sync, got %d", w.Code)
	}
}

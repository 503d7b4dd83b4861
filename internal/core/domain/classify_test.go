package domain

import (
	"errors"
	"testing"
	"time"

	coreerrors "biosync/internal/core/errors"
)

func mustStrategy(t *testing.T, name string) Strategy {
	t.Helper()
	s, err := ParseStrategy(name)
	if err != nil {
		t.Fatalf("ParseStrategy(%q) returned error: %v", name, err)
	}
	return s
}

func TestDayPositional_FirstLastAndMiddle(t *testing.T) {
	punches := []RawPunch{
		{EmployeeID: 7, Timestamp: at(7, 10, 0)},
		{EmployeeID: 7, Timestamp: at(12, 40, 0)},
		{EmployeeID: 7, Timestamp: at(17, 5, 0)},
	}

	got := Classify(punches, mustStrategy(t, StrategyDayPositional))
	want := []EventType{CheckIn, CheckOut, CheckOut}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("punch %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDayPositional_MorningMiddlePunchIsCheckIn(t *testing.T) {
	punches := []RawPunch{
		{EmployeeID: 7, Timestamp: at(7, 0, 0)},
		{EmployeeID: 7, Timestamp: at(11, 59, 59)},
		{EmployeeID: 7, Timestamp: at(16, 0, 0)},
	}

	got := Classify(punches, mustStrategy(t, StrategyDayPositional))
	if got[1] != CheckIn {
		t.Fatalf("expected middle punch before noon to be check-in, got %s", got[1])
	}
}

func TestDayPositional_SinglePunchDayIsCheckIn(t *testing.T) {
	punches := []RawPunch{{EmployeeID: 7, Timestamp: at(18, 0, 0)}}

	got := Classify(punches, mustStrategy(t, StrategyDayPositional))
	if got[0] != CheckIn {
		t.Fatalf("expected lone punch to be check-in, got %s", got[0])
	}
}

func TestDayPositional_DaysAndEmployeesAreIndependent(t *testing.T) {
	nextDay := at(7, 0, 0).Add(24 * time.Hour)
	punches := []RawPunch{
		{EmployeeID: 1, Timestamp: at(7, 0, 0)},
		{EmployeeID: 2, Timestamp: at(7, 5, 0)},
		{EmployeeID: 1, Timestamp: at(16, 0, 0)},
		{EmployeeID: 1, Timestamp: nextDay},
	}

	got := Classify(punches, mustStrategy(t, StrategyDayPositional))
	want := []EventType{CheckIn, CheckIn, CheckOut, CheckIn}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("punch %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestStatusCode_Mapping(t *testing.T) {
	s := mustStrategy(t, StrategyStatusCode)
	cases := map[int]EventType{
		0:  CheckIn,
		15: CheckIn,
		4:  CheckIn,
		1:  CheckOut,
		5:  CheckOut,
		9:  Unknown,
	}
	for code, want := range cases {
		got := s.Label(RawPunch{EmployeeID: 1, Timestamp: at(9, 0, 0), StatusCode: code}, DayPosition{Index: 0, Count: 1})
		if got != want {
			t.Errorf("status %d: expected %s, got %s", code, want, got)
		}
	}
}

func TestClockHour_CutoffAtThreePM(t *testing.T) {
	s := mustStrategy(t, StrategyClockHour)
	if got := s.Label(RawPunch{Timestamp: at(14, 59, 59)}, DayPosition{}); got != CheckIn {
		t.Errorf("expected 14:59:59 to be check-in, got %s", got)
	}
	if got := s.Label(RawPunch{Timestamp: at(15, 0, 0)}, DayPosition{}); got != CheckOut {
		t.Errorf("expected 15:00:00 to be check-out, got %s", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	punches := []RawPunch{
		{EmployeeID: 1, Timestamp: at(7, 0, 0)},
		{EmployeeID: 1, Timestamp: at(10, 0, 0)},
		{EmployeeID: 1, Timestamp: at(13, 0, 0)},
		{EmployeeID: 1, Timestamp: at(18, 0, 0)},
		{EmployeeID: 2, Timestamp: at(9, 0, 0), StatusCode: 9},
	}

	for _, name := range Strategies() {
		s := mustStrategy(t, name)
		first := Classify(punches, s)
		for run := 0; run < 5; run++ {
			again := Classify(punches, s)
			for i := range first {
				if first[i] != again[i] {
					t.Fatalf("%s: run %d label %d differs: %s vs %s", name, run, i, first[i], again[i])
				}
			}
		}
	}
}

func TestParseStrategy_Unknown(t *testing.T) {
	_, err := ParseStrategy("majority-vote")
	if !errors.Is(err, coreerrors.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestBuildEvents_IDsAreStable(t *testing.T) {
	p := RawPunch{EmployeeID: 42, Timestamp: at(8, 15, 30).Add(250 * time.Millisecond), StatusCode: 0}

	a := BuildEvents([]RawPunch{p}, []EventType{CheckIn}, "dev")
	b := BuildEvents([]RawPunch{p}, []EventType{CheckIn}, "dev")

	if a[0].ID != b[0].ID {
		t.Fatalf("expected identical ids, got %q and %q", a[0].ID, b[0].ID)
	}
	if a[0].ID != "42_20251203_081530_check-in" {
		t.Errorf("unexpected id %q", a[0].ID)
	}
	if a[0].Date != "2025-12-03" || a[0].Time != "08:15:30" {
		t.Errorf("unexpected date/time %s %s", a[0].Date, a[0].Time)
	}
}

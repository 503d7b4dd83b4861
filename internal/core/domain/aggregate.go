package domain

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
)

// EmployeeAttendance is one employee's share of a run.
type EmployeeAttendance struct {
	Profile   Employee
	Months    map[string]MonthlyBucket
	CheckIns  int
	CheckOuts int
	Unknown   int
}

// MonthKeys returns the bucket keys in ascending order.
func (e *EmployeeAttendance) MonthKeys() []string {
	return slices.Sorted(maps.Keys(e.Months))
}

// Events concatenates the buckets in month order.
func (e *EmployeeAttendance) Events() []AttendanceEvent {
	var out []AttendanceEvent
	for _, k := range e.MonthKeys() {
		out = append(out, e.Months[k]...)
	}
	return out
}

func (e *EmployeeAttendance) Total() int {
	return e.CheckIns + e.CheckOuts + e.Unknown
}

// Aggregator groups events by employee and month for a single run. It owns
// its maps and is not safe for concurrent use.
type Aggregator struct {
	dir        *Directory
	byEmployee map[string]*EmployeeAttendance
	seen       map[string]struct{}
}

func NewAggregator(dir *Directory) *Aggregator {
	return &Aggregator{
		dir:        dir,
		byEmployee: make(map[string]*EmployeeAttendance),
		seen:       make(map[string]struct{}),
	}
}

// Add files events into their employee and month buckets. An event whose id
// was already added is ignored.
func (a *Aggregator) Add(events ...AttendanceEvent) {
	for _, ev := range events {
		if _, dup := a.seen[ev.ID]; dup {
			continue
		}
		a.seen[ev.ID] = struct{}{}

		emp, ok := a.byEmployee[ev.EmployeeID]
		if !ok {
			emp = &EmployeeAttendance{
				Profile: a.dir.Employee(ev.EmployeeID),
				Months:  make(map[string]MonthlyBucket),
			}
			a.byEmployee[ev.EmployeeID] = emp
		}

		month := ev.MonthKey()
		emp.Months[month] = append(emp.Months[month], ev)

		switch ev.Type {
		case CheckIn:
			emp.CheckIns++
		case CheckOut:
			emp.CheckOuts++
		default:
			emp.Unknown++
		}
	}
}

// Result returns employees ordered by id with every bucket sorted oldest
// first. Employees without events never appear.
func (a *Aggregator) Result() []EmployeeAttendance {
	out := make([]EmployeeAttendance, 0, len(a.byEmployee))
	for _, emp := range a.byEmployee {
		for k, bucket := range emp.Months {
			slices.SortStableFunc(bucket, func(x, y AttendanceEvent) int {
				return x.Timestamp.Compare(y.Timestamp)
			})
			emp.Months[k] = bucket
		}
		out = append(out, *emp)
	}
	slices.SortFunc(out, func(x, y EmployeeAttendance) int {
		return CompareEmployeeIDs(x.Profile.ID, y.Profile.ID)
	})
	return out
}

// CompareEmployeeIDs orders numeric ids numerically and anything else
// lexically after them.
func CompareEmployeeIDs(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Compare(ai, bi)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

// Summarize fills the count fields of m from the aggregated attendance.
func Summarize(m SyncMetadata, attendance []EmployeeAttendance) SyncMetadata {
	m.TotalEmployees = len(attendance)
	m.TotalRecords, m.TotalCheckins, m.TotalCheckouts, m.TotalUnknown = 0, 0, 0, 0
	for i := range attendance {
		m.TotalCheckins += attendance[i].CheckIns
		m.TotalCheckouts += attendance[i].CheckOuts
		m.TotalUnknown += attendance[i].Unknown
	}
	m.TotalRecords = m.TotalCheckins + m.TotalCheckouts + m.TotalUnknown
	return m
}

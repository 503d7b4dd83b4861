package domain

import (
	"fmt"
	"slices"

	coreerrors "biosync/internal/core/errors"
)

const (
	StrategyClockHour     = "clock-hour"
	StrategyStatusCode    = "status-code"
	StrategyDayPositional = "day-positional"
)

// DayPosition locates a punch within its employee's punches for that
// calendar day. Strategies that do not care about the day ignore it.
type DayPosition struct {
	Index int
	Count int
}

func (p DayPosition) First() bool { return p.Index == 0 }
func (p DayPosition) Last() bool  { return p.Index == p.Count-1 }

// Strategy labels a single unique punch. Implementations must be pure.
type Strategy interface {
	Name() string
	Label(p RawPunch, pos DayPosition) EventType
}

// ClockHour labels punches before Cutoff o'clock as check-in, the rest as
// check-out.
type ClockHour struct {
	Cutoff int
}

func (ClockHour) Name() string { return StrategyClockHour }

func (s ClockHour) Label(p RawPunch, _ DayPosition) EventType {
	if p.Timestamp.Hour() < s.Cutoff {
		return CheckIn
	}
	return CheckOut
}

// StatusCode maps device status codes. The mapping is firmware specific.
type StatusCode struct {
	In  []int
	Out []int
}

func (StatusCode) Name() string { return StrategyStatusCode }

func (s StatusCode) Label(p RawPunch, _ DayPosition) EventType {
	switch {
	case slices.Contains(s.In, p.StatusCode):
		return CheckIn
	case slices.Contains(s.Out, p.StatusCode):
		return CheckOut
	default:
		return Unknown
	}
}

// DayPositional treats the first punch of the day as check-in and the last
// as check-out. Punches in between fall back to MiddleCutoff. A lone punch
// is a check-in.
type DayPositional struct {
	MiddleCutoff int
}

func (DayPositional) Name() string { return StrategyDayPositional }

func (s DayPositional) Label(p RawPunch, pos DayPosition) EventType {
	switch {
	case pos.First():
		return CheckIn
	case pos.Last():
		return CheckOut
	case p.Timestamp.Hour() < s.MiddleCutoff:
		return CheckIn
	default:
		return CheckOut
	}
}

// Strategies lists the accepted strategy names.
func Strategies() []string {
	return []string{StrategyClockHour, StrategyStatusCode, StrategyDayPositional}
}

// ParseStrategy returns the strategy with its default parameters.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case StrategyClockHour:
		return ClockHour{Cutoff: 15}, nil
	case StrategyStatusCode:
		return StatusCode{In: []int{0, 15, 4}, Out: []int{1, 5}}, nil
	case StrategyDayPositional:
		return DayPositional{MiddleCutoff: 12}, nil
	}
	return nil, fmt.Errorf("%q (want one of %v): %w", name, Strategies(), coreerrors.ErrUnknownStrategy)
}

type dayKey struct {
	employee int
	date     string
}

// Classify labels every punch with s. The result is index aligned with
// punches. Day positions are computed per employee and calendar day in the
// punch's own location, ordered by time.
func Classify(punches []RawPunch, s Strategy) []EventType {
	days := make(map[dayKey][]int)
	for i, p := range punches {
		k := dayKey{employee: p.EmployeeID, date: p.Timestamp.Format(DateLayout)}
		days[k] = append(days[k], i)
	}

	labels := make([]EventType, len(punches))
	for _, idx := range days {
		slices.SortStableFunc(idx, func(a, b int) int {
			return punches[a].Timestamp.Compare(punches[b].Timestamp)
		})
		for pos, i := range idx {
			labels[i] = s.Label(punches[i], DayPosition{Index: pos, Count: len(idx)})
		}
	}
	return labels
}

// BuildEvents turns classified punches into attendance events.
func BuildEvents(punches []RawPunch, labels []EventType, deviceID string) []AttendanceEvent {
	events := make([]AttendanceEvent, 0, len(punches))
	for i, p := range punches {
		events = append(events, NewEvent(p, labels[i], deviceID))
	}
	return events
}

package domain

import (
	"fmt"
	"slices"
	"time"

	coreerrors "biosync/internal/core/errors"
)

type punchKey struct {
	employee int
	second   int64
}

// Dedup drops repeated punches, keyed by employee and timestamp truncated to
// the second, and returns the survivors sorted oldest first. The first
// occurrence of a key wins. Dedup(Dedup(x)) == Dedup(x).
func Dedup(punches []RawPunch) []RawPunch {
	seen := make(map[punchKey]struct{}, len(punches))
	out := make([]RawPunch, 0, len(punches))
	for _, p := range punches {
		k := punchKey{employee: p.EmployeeID, second: p.Timestamp.Truncate(time.Second).Unix()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b RawPunch) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// FilterSince keeps punches at or after start. A zero start keeps everything.
func FilterSince(punches []RawPunch, start time.Time) []RawPunch {
	if start.IsZero() {
		return punches
	}
	out := make([]RawPunch, 0, len(punches))
	for _, p := range punches {
		if !p.Timestamp.Before(start) {
			out = append(out, p)
		}
	}
	return out
}

// ValidatePunches rejects punches the device should never produce.
func ValidatePunches(punches []RawPunch) error {
	for i, p := range punches {
		if p.EmployeeID < 0 {
			return fmt.Errorf("punch %d: negative employee id %d: %w", i, p.EmployeeID, coreerrors.ErrMalformedPunch)
		}
		if p.Timestamp.IsZero() {
			return fmt.Errorf("punch %d: missing timestamp: %w", i, coreerrors.ErrMalformedPunch)
		}
	}
	return nil
}

package scheduler

import "fmt"

// Interval is the half-open range [Start, End) within one day.
type Interval struct {
	Start Clock
	End   Clock
}

// ParseInterval reads a pair of "HH:MM" bounds. It does not check their order.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, fmt.Errorf("parse start: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, fmt.Errorf("parse end: %w", err)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether a and b share any minute. For non-degenerate
// intervals this is a.Start < b.End && b.Start < a.End; the long form also
// keeps two identical zero-length intervals in conflict.
func Overlaps(a, b Interval) bool {
	return (a.Start >= b.Start && a.Start < b.End) ||
		(a.End > b.Start && a.End <= b.End) ||
		(a.Start <= b.Start && a.End >= b.End)
}

// SlotFor is the interval a job of durationSeconds occupies from start.
// A job shorter than a minute still holds its starting minute.
func SlotFor(start Clock, durationSeconds int) (Interval, error) {
	end, err := EndTime(start, durationSeconds)
	if err != nil {
		return Interval{}, err
	}
	if end <= start {
		end = start + 1
		if int(end) >= MinutesPerDay {
			return Interval{}, fmt.Errorf("%w: %s + %ds", ErrCrossesMidnight, start, durationSeconds)
		}
	}
	return Interval{Start: start, End: end}, nil
}

// String formats the interval as "HH:MM-HH:MM".
func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound of a Clock.
const MinutesPerDay = 24 * 60

// Errors returned by the parsers and the end-time projection.
var (
	ErrInvalidClock    = errors.New("invalid clock time")
	ErrCrossesMidnight = errors.New("task would end after midnight")
	ErrInvalidDate     = errors.New("invalid date")
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

// ParseClock parses a 24-hour "HH:MM" string. A single-digit hour is accepted.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(hours*60 + minutes), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// EndTime adds durationSeconds to start. Leftover seconds are dropped, so a
// 40 second job starting at 05:00 ends at 05:00. An end at or past 24:00 is
// rejected because same-day "HH:MM" ordering would no longer hold.
func EndTime(start Clock, durationSeconds int) (Clock, error) {
	if durationSeconds < 0 {
		return 0, fmt.Errorf("negative duration: %ds", durationSeconds)
	}
	end := int(start) + durationSeconds/60
	if end >= MinutesPerDay {
		return 0, fmt.Errorf("%w: %s + %ds", ErrCrossesMidnight, start, durationSeconds)
	}
	return Clock(end), nil
}

// ProjectEndTime is EndTime over "HH:MM" strings.
func ProjectEndTime(startTime string, durationSeconds int) (string, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return "", err
	}
	end, err := EndTime(start, durationSeconds)
	if err != nil {
		return "", err
	}
	return end.String(), nil
}

package scheduler

import (
	"fmt"

	"github.com/HaGotHem/optines/internal/models"
)

var minuteSteps = []int{0, 10, 20, 30, 40, 50}

func DefaultWorkingHours() models.WorkingHours {
	return models.WorkingHours{Start: "05:00", End: "21:00"}
}

func parseHours(wh models.WorkingHours) (Interval, error) {
	iv, err := ParseInterval(wh.Start, wh.End)
	if err != nil {
		return Interval{}, fmt.Errorf("working hours: %w", err)
	}
	return iv, nil
}

func ValidateWorkingHours(wh models.WorkingHours) error {
	iv, err := parseHours(wh)
	if err != nil {
		return err
	}
	if iv.Start >= iv.End {
		return fmt.Errorf("working hours: start %s must be before end %s", wh.Start, wh.End)
	}
	return nil
}

// WithinWorkingHours reports whether a task may start at start. Both bounds
// are inclusive.
func WithinWorkingHours(wh models.WorkingHours, start Clock) (bool, error) {
	iv, err := parseHours(wh)
	if err != nil {
		return false, err
	}
	return start >= iv.Start && start <= iv.End, nil
}

// AvailableHours lists the selectable "HH" values of the working day.
func AvailableHours(wh models.WorkingHours) ([]string, error) {
	iv, err := parseHours(wh)
	if err != nil {
		return nil, err
	}
	var hours []string
	for h := iv.Start.Hour(); h <= iv.End.Hour(); h++ {
		hours = append(hours, fmt.Sprintf("%02d", h))
	}
	return hours, nil
}

// AvailableMinutes lists the selectable "MM" values for hour. On the last
// hour of the day the list stops at the closing minute.
func AvailableMinutes(wh models.WorkingHours, hour int) ([]string, error) {
	iv, err := parseHours(wh)
	if err != nil {
		return nil, err
	}
	var minutes []string
	for _, m := range minuteSteps {
		if hour == iv.End.Hour() && m > iv.End.Minute() {
			continue
		}
		minutes = append(minutes, fmt.Sprintf("%02d", m))
	}
	return minutes, nil
}

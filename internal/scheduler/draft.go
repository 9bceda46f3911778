package scheduler

import (
	"fmt"
	"time"

	"github.com/HaGotHem/optines/internal/models"
)

const DateLayout = "2006-01-02"

// Draft holds the inputs of a task being planned. PaletteGood defaults to
// true when unset.
type Draft struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	Packages    string `json:"packages"`
	PaletteGood *bool  `json:"paletteGood,omitempty"`
	TeamMembers []int  `json:"teamMembers"`
	ExcludeID   string `json:"excludeId,omitempty"`
}

type Plan struct {
	PackageCount int                    `json:"packageCount"`
	Calculation  models.TimeCalculation `json:"calculation"`
	StartTime    string                 `json:"startTime"`
	EndTime      string                 `json:"endTime"`
	Candidate    Candidate              `json:"-"`
}

func (d Draft) IsPaletteGood() bool {
	return d.PaletteGood == nil || *d.PaletteGood
}

// Plan derives the duration, end time and candidate slot from the draft.
func (d Draft) Plan() (Plan, error) {
	if err := ValidateDate(d.Date); err != nil {
		return Plan{}, err
	}
	start, err := ParseClock(d.StartTime)
	if err != nil {
		return Plan{}, fmt.Errorf("start time: %w", err)
	}

	count := ParsePackageCount(d.Packages)
	calc := CalculateDuration(count, d.IsPaletteGood(), len(d.TeamMembers))

	slot, err := SlotFor(start, calc.TotalTime)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		PackageCount: count,
		Calculation:  calc,
		StartTime:    start.String(),
		EndTime:      slot.End.String(),
		Candidate: Candidate{
			ExcludeID: d.ExcludeID,
			Date:      d.Date,
			Slot:      slot,
		},
	}, nil
}

func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

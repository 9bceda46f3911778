package scheduler

import (
	"cmp"
	"slices"

	"github.com/HaGotHem/optines/internal/models"
)

// Candidate is the proposed slot being checked against the catalog.
// ExcludeID names the task being edited so it is not compared with itself.
type Candidate struct {
	ExcludeID string
	Date      string
	Slot      Interval
}

func DefaultFixedEvents() []models.FixedEvent {
	return []models.FixedEvent{
		{Title: "Réunion équipe", StartTime: "09:00", EndTime: "10:00", Type: models.EventTypeMeeting},
		{Title: "Formation sécurité", StartTime: "16:30", EndTime: "18:00", Type: models.EventTypeTraining},
	}
}

// sameDay returns the catalog entries competing with c, in catalog order.
func sameDay(c Candidate, tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Date != c.Date {
			continue
		}
		if c.ExcludeID != "" && t.ID == c.ExcludeID {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ScanConflicts lists every same-date task and fixed event whose interval
// overlaps the candidate, ordered by start time. Records with malformed
// times cannot be placed on the day and are skipped.
func ScanConflicts(c Candidate, tasks []models.Task, events []models.FixedEvent) []models.Conflict {
	conflicts := []models.Conflict{}

	for _, t := range sameDay(c, tasks) {
		slot, err := ParseInterval(t.StartTime, t.EndTime)
		if err != nil || !Overlaps(c.Slot, slot) {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Title:     t.Title,
			StartTime: t.StartTime,
			EndTime:   t.EndTime,
			Type:      models.EventTypeTask,
			TaskID:    t.ID,
		})
	}

	for _, e := range events {
		slot, err := ParseInterval(e.StartTime, e.EndTime)
		if err != nil || !Overlaps(c.Slot, slot) {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Title:     e.Title,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Type:      e.Type,
		})
	}

	SortConflicts(conflicts)
	return conflicts
}

// SortConflicts orders conflicts by start minute, keeping input order on ties.
func SortConflicts(conflicts []models.Conflict) {
	slices.SortStableFunc(conflicts, func(a, b models.Conflict) int {
		return cmp.Compare(startMinute(a.StartTime), startMinute(b.StartTime))
	})
}

func startMinute(s string) int {
	c, err := ParseClock(s)
	if err != nil {
		return MinutesPerDay
	}
	return int(c)
}

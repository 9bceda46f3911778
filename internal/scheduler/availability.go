package scheduler

import (
	"slices"

	"github.com/HaGotHem/optines/internal/models"
)

// Commitment is a same-day task that already holds an employee.
type Commitment struct {
	TaskID    string `json:"taskId"`
	TaskTitle string `json:"taskTitle"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Overlaps  bool   `json:"overlaps"`
}

type EmployeeAvailability struct {
	Employee    models.Employee `json:"employee"`
	Assigned    bool            `json:"assigned"`
	Selected    bool            `json:"selected"`
	Commitments []Commitment    `json:"commitments,omitempty"`
}

// Commitments returns the same-day tasks the employee is a member of.
// Membership alone commits an employee for the day; Overlaps additionally
// flags a time clash with the candidate. Legacy tasks never commit anyone.
func Commitments(employeeID int, c Candidate, tasks []models.Task) []Commitment {
	var out []Commitment
	for _, t := range sameDay(c, tasks) {
		crew, ok := t.Crew()
		if !ok || !slices.Contains(crew, employeeID) {
			continue
		}
		overlaps := false
		if slot, err := ParseInterval(t.StartTime, t.EndTime); err == nil {
			overlaps = Overlaps(c.Slot, slot)
		}
		out = append(out, Commitment{
			TaskID:    t.ID,
			TaskTitle: t.Title,
			StartTime: t.StartTime,
			EndTime:   t.EndTime,
			Overlaps:  overlaps,
		})
	}
	return out
}

func IsAssigned(employeeID int, c Candidate, tasks []models.Task) bool {
	return len(Commitments(employeeID, c, tasks)) > 0
}

// CommittedEmployees is the set of employee ids held by same-day tasks.
func CommittedEmployees(c Candidate, tasks []models.Task) map[int]struct{} {
	committed := make(map[int]struct{})
	for _, t := range sameDay(c, tasks) {
		crew, ok := t.Crew()
		if !ok {
			continue
		}
		for _, id := range crew {
			committed[id] = struct{}{}
		}
	}
	return committed
}

// AvailableHeadcount is the number of roster employees not yet committed on
// the candidate's date. Ids no longer on the roster are ignored.
func AvailableHeadcount(c Candidate, roster []models.Employee, tasks []models.Task) int {
	committed := CommittedEmployees(c, tasks)
	busy := 0
	for _, e := range roster {
		if _, ok := committed[e.ID]; ok {
			busy++
		}
	}
	return max(0, len(roster)-busy)
}

// ResolveAvailability reports every roster employee for the team selector.
func ResolveAvailability(c Candidate, selected []int, roster []models.Employee, tasks []models.Task) []EmployeeAvailability {
	out := make([]EmployeeAvailability, 0, len(roster))
	for _, e := range roster {
		commitments := Commitments(e.ID, c, tasks)
		out = append(out, EmployeeAvailability{
			Employee:    e,
			Assigned:    len(commitments) > 0,
			Selected:    slices.Contains(selected, e.ID),
			Commitments: commitments,
		})
	}
	return out
}

// Occupied returns the selected ids that are already committed elsewhere.
func Occupied(c Candidate, selected []int, tasks []models.Task) []int {
	committed := CommittedEmployees(c, tasks)
	var out []int
	for _, id := range selected {
		if _, ok := committed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/HaGotHem/optines/internal/logging"
	"github.com/HaGotHem/optines/internal/models"
	"github.com/HaGotHem/optines/internal/scheduler"
)

type RosterService struct {
	roster RosterStore
	tasks  TaskStore
}

func NewRosterService(roster RosterStore, tasks TaskStore) *RosterService {
	return &RosterService{roster: roster, tasks: tasks}
}

type PerformanceTier string

const (
	TierHigh   PerformanceTier = "high"
	TierMedium PerformanceTier = "medium"
	TierLow    PerformanceTier = "low"
)

func TierFor(performance int) PerformanceTier {
	switch {
	case performance >= 90:
		return TierHigh
	case performance >= 75:
		return TierMedium
	default:
		return TierLow
	}
}

type RosterEntry struct {
	models.Employee
	PerformanceTier PerformanceTier `json:"performanceTier"`
}

// List returns the roster, filtered by a case-insensitive substring match
// when query is not blank.
func (s *RosterService) List(ctx context.Context, query string) ([]RosterEntry, error) {
	roster, err := s.roster.LoadRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error trying to load roster: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	entries := make([]RosterEntry, 0, len(roster))
	for _, e := range roster {
		if q != "" && !matches(e, q) {
			continue
		}
		entries = append(entries, RosterEntry{Employee: e, PerformanceTier: TierFor(e.Performance)})
	}
	return entries, nil
}

func matches(e models.Employee, q string) bool {
	fields := []string{e.Name, e.Role, e.Section, e.Location, e.Shift}
	if e.Email != nil {
		fields = append(fields, *e.Email)
	}
	if e.Phone != nil {
		fields = append(fields, *e.Phone)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (s *RosterService) Create(ctx context.Context, e models.Employee) (models.Employee, error) {
	if strings.TrimSpace(e.Location) == "" {
		return models.Employee{}, invalid("location", "Veuillez remplir tous les champs obligatoires")
	}
	if err := normalizeEmployee(&e); err != nil {
		return models.Employee{}, err
	}
	e.ID = 0
	e.TasksCompleted = 0

	created, err := s.roster.CreateEmployee(ctx, e)
	if err != nil {
		return models.Employee{}, fmt.Errorf("Error trying to create employee: %w", err)
	}
	logging.Logger.Infof("Event ID: EMPLOYEE_CREATED, Description: Employee %d (%s) added", created.ID, created.Name)
	return created, nil
}

// Update replaces the editable fields of an employee. The completion
// counter is kept from the stored record.
func (s *RosterService) Update(ctx context.Context, e models.Employee) (models.Employee, error) {
	if err := normalizeEmployee(&e); err != nil {
		return models.Employee{}, err
	}
	current, err := s.roster.GetEmployee(ctx, e.ID)
	if err != nil {
		return models.Employee{}, err
	}
	e.TasksCompleted = current.TasksCompleted

	if err := s.roster.UpdateEmployee(ctx, e); err != nil {
		return models.Employee{}, err
	}
	logging.Logger.Infof("Event ID: EMPLOYEE_UPDATED, Description: Employee %d updated", e.ID)
	return e, nil
}

func (s *RosterService) Delete(ctx context.Context, id int) error {
	if err := s.roster.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: EMPLOYEE_DELETED, Description: Employee %d removed", id)
	return nil
}

var validStatuses = []models.EmployeeStatus{
	models.StatusOnline,
	models.StatusBusy,
	models.StatusOffline,
	models.StatusBreak,
}

func normalizeEmployee(e *models.Employee) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Role = strings.TrimSpace(e.Role)
	e.Section = strings.TrimSpace(e.Section)
	e.Location = strings.TrimSpace(e.Location)
	if e.Name == "" || e.Role == "" || e.Section == "" {
		return invalid("employee", "Veuillez remplir tous les champs obligatoires")
	}

	if e.Shift == "" {
		e.Shift = models.ShiftMorning
	}
	if !slices.Contains(models.ShiftPresets, e.Shift) {
		return invalid("shift", "Horaire inconnu : %s", e.Shift)
	}
	if e.Status == "" {
		e.Status = models.StatusOffline
	}
	if !slices.Contains(validStatuses, e.Status) {
		return invalid("status", "Statut inconnu : %s", e.Status)
	}
	if e.Performance < 0 || e.Performance > 100 {
		return invalid("performance", "La performance doit être comprise entre 0 et 100")
	}
	if e.Rating < 0 || e.Rating > 5 {
		return invalid("rating", "La note doit être comprise entre 0 et 5")
	}
	return nil
}

type TeamStats struct {
	TotalEmployees     int `json:"totalEmployees"`
	AveragePerformance int `json:"averagePerformance"`
	ActiveEmployees    int `json:"activeEmployees"`
	PackagesToday      int `json:"packagesToday"`
}

// TeamStats summarises the roster and the packages scheduled on date.
// Active employees are those currently busy on a task.
func (s *RosterService) TeamStats(ctx context.Context, date string) (TeamStats, error) {
	if err := scheduler.ValidateDate(date); err != nil {
		return TeamStats{}, &ValidationError{Field: "date", Message: "Date invalide", Err: err}
	}
	roster, err := s.roster.LoadRoster(ctx)
	if err != nil {
		return TeamStats{}, fmt.Errorf("Error trying to load roster: %w", err)
	}
	tasks, err := s.tasks.LoadTasksForDate(ctx, date)
	if err != nil {
		return TeamStats{}, fmt.Errorf("Error trying to load tasks: %w", err)
	}

	stats := TeamStats{TotalEmployees: len(roster)}
	total := 0
	for _, e := range roster {
		total += e.Performance
		if e.Status == models.StatusBusy {
			stats.ActiveEmployees++
		}
	}
	if len(roster) > 0 {
		stats.AveragePerformance = int(math.Round(float64(total) / float64(len(roster))))
	}
	for _, t := range tasks {
		stats.PackagesToday += t.Packages
	}
	return stats, nil
}

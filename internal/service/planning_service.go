package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/logging"
	"github.com/HaGotHem/optines/internal/models"
	"github.com/HaGotHem/optines/internal/scheduler"
)

type Manager struct {
	Name     string
	Section  string
	Initials string
}

type PlanningOptions struct {
	Manager      Manager
	ReminderLead time.Duration
	Location     *time.Location
	// FixedEvents defaults to scheduler.DefaultFixedEvents when nil.
	FixedEvents []models.FixedEvent
}

type PlanningService struct {
	tasks    TaskStore
	roster   RosterStore
	settings SettingsStore
	notifier client.Notifier

	manager      Manager
	reminderLead time.Duration
	location     *time.Location
	events       []models.FixedEvent
	newID        func() string
}

func NewPlanningService(
	tasks TaskStore,
	roster RosterStore,
	settings SettingsStore,
	notifier client.Notifier,
	opts PlanningOptions,
) *PlanningService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.FixedEvents == nil {
		opts.FixedEvents = scheduler.DefaultFixedEvents()
	}
	return &PlanningService{
		tasks:        tasks,
		roster:       roster,
		settings:     settings,
		notifier:     notifier,
		manager:      opts.Manager,
		reminderLead: opts.ReminderLead,
		location:     opts.Location,
		events:       opts.FixedEvents,
		newID:        uuid.NewString,
	}
}

type Preview struct {
	scheduler.Plan
	Conflicts          []models.Conflict                `json:"conflicts"`
	AvailableHeadcount int                              `json:"availableHeadcount"`
	Availability       []scheduler.EmployeeAvailability `json:"availability"`
	WithinWorkingHours bool                             `json:"withinWorkingHours"`
}

// Preview computes everything the calculator shows for a draft without
// saving anything.
func (s *PlanningService) Preview(ctx context.Context, d scheduler.Draft) (*Preview, error) {
	plan, err := d.Plan()
	if err != nil {
		return nil, draftError(err)
	}

	tasks, err := s.tasks.LoadTasksForDate(ctx, d.Date)
	if err != nil {
		return nil, fmt.Errorf("Error trying to load tasks: %w", err)
	}
	roster, err := s.roster.LoadRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error trying to load roster: %w", err)
	}
	wh, err := s.settings.GetWorkingHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("Error trying to load working hours: %w", err)
	}

	start, _ := scheduler.ParseClock(plan.StartTime)
	within, err := scheduler.WithinWorkingHours(wh, start)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Plan:               plan,
		Conflicts:          scheduler.ScanConflicts(plan.Candidate, tasks, s.events),
		AvailableHeadcount: scheduler.AvailableHeadcount(plan.Candidate, roster, tasks),
		Availability:       scheduler.ResolveAvailability(plan.Candidate, d.TeamMembers, roster, tasks),
		WithinWorkingHours: within,
	}, nil
}

// CreateTask validates the draft and saves it as a task. When the slot
// clashes with other items and confirmConflicts is false, a conflict alert
// is sent and a *ConflictError carrying the unsaved task is returned.
func (s *PlanningService) CreateTask(ctx context.Context, d scheduler.Draft, confirmConflicts bool) (models.Task, error) {
	if err := scheduler.ValidateDate(d.Date); err != nil {
		return models.Task{}, &ValidationError{Field: "date", Message: "Date invalide", Err: err}
	}
	start, err := scheduler.ParseClock(d.StartTime)
	if err != nil {
		return models.Task{}, &ValidationError{Field: "startTime", Message: "Heure de début invalide", Err: err}
	}

	count := scheduler.ParsePackageCount(d.Packages)
	if count <= 0 {
		return models.Task{}, invalid("packages", "Veuillez entrer un nombre de colis valide")
	}

	tasks, err := s.tasks.LoadTasksForDate(ctx, d.Date)
	if err != nil {
		return models.Task{}, fmt.Errorf("Error trying to load tasks: %w", err)
	}
	roster, err := s.roster.LoadRoster(ctx)
	if err != nil {
		return models.Task{}, fmt.Errorf("Error trying to load roster: %w", err)
	}

	day := scheduler.Candidate{ExcludeID: d.ExcludeID, Date: d.Date}
	if scheduler.AvailableHeadcount(day, roster, tasks) == 0 {
		return models.Task{}, invalid("teamMembers",
			"Aucun employé disponible pour cette plage horaire. Tous les employés sont déjà assignés à d'autres tâches qui se chevauchent.")
	}

	members := uniqueMembers(d.TeamMembers)
	if len(members) == 0 {
		return models.Task{}, invalid("teamMembers", "Veuillez ajouter au moins un membre d'équipe à la tâche")
	}
	names := make(map[int]string, len(roster))
	for _, e := range roster {
		names[e.ID] = e.Name
	}
	for _, id := range members {
		if _, ok := names[id]; !ok {
			return models.Task{}, invalid("teamMembers", "Employé inconnu : %d", id)
		}
	}

	if occupied := scheduler.Occupied(day, members, tasks); len(occupied) > 0 {
		list := make([]string, len(occupied))
		for i, id := range occupied {
			list[i] = names[id]
		}
		return models.Task{}, invalid("teamMembers",
			"Les employés suivants sont déjà assignés à d'autres tâches : %s. Veuillez les retirer de l'équipe.",
			strings.Join(list, ", "))
	}

	wh, err := s.settings.GetWorkingHours(ctx)
	if err != nil {
		return models.Task{}, fmt.Errorf("Error trying to load working hours: %w", err)
	}
	within, err := scheduler.WithinWorkingHours(wh, start)
	if err != nil {
		return models.Task{}, err
	}
	if !within {
		return models.Task{}, invalid("startTime",
			"La tâche doit commencer entre %s et %s selon le planning.", wh.Start, wh.End)
	}

	d.TeamMembers = members
	plan, err := d.Plan()
	if err != nil {
		return models.Task{}, draftError(err)
	}

	task := models.Task{
		ID:              s.newID(),
		Title:           fmt.Sprintf("%s - %s", s.manager.Section, s.manager.Initials),
		Date:            d.Date,
		StartTime:       plan.StartTime,
		EndTime:         plan.EndTime,
		Duration:        plan.Calculation.FormattedTime,
		Packages:        count,
		TeamSize:        len(members),
		ManagerSection:  s.manager.Section,
		ManagerInitials: s.manager.Initials,
		TeamMembers:     members,
	}

	conflicts := scheduler.ScanConflicts(plan.Candidate, tasks, s.events)
	if len(conflicts) > 0 {
		if !confirmConflicts {
			alert := client.ConflictAlert{Title: task.Title, Conflicts: conflicts}
			if err := s.notifier.SendConflictAlert(ctx, alert); err != nil {
				logging.Logger.Warnf("Event ID: CONFLICT_ALERT_FAILED, Description: Could not send conflict alert for %s: %v", task.Title, err)
			}
			return models.Task{}, &ConflictError{Task: task, Conflicts: conflicts}
		}
		logging.Logger.Infof("Event ID: CONFLICT_CONFIRMED, Description: Task %s saved despite %d conflicts", task.ID, len(conflicts))
	}

	if err := s.tasks.AppendTask(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("Error trying to save task: %w", err)
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s scheduled on %s from %s to %s", task.ID, task.Date, task.StartTime, task.EndTime)

	s.scheduleReminder(ctx, task)
	return task, nil
}

func (s *PlanningService) scheduleReminder(ctx context.Context, task models.Task) {
	at, err := s.reminderTime(task)
	if err != nil {
		logging.Logger.Warnf("Event ID: REMINDER_SKIPPED, Description: Task %s: %v", task.ID, err)
		return
	}
	if err := s.notifier.ScheduleReminder(ctx, task, at); err != nil {
		logging.Logger.Warnf("Event ID: REMINDER_FAILED, Description: Could not schedule reminder for task %s: %v", task.ID, err)
	}
}

// reminderTime is the task start on its date, minus the reminder lead.
func (s *PlanningService) reminderTime(task models.Task) (time.Time, error) {
	day, err := time.ParseInLocation(scheduler.DateLayout, task.Date, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", scheduler.ErrInvalidDate, task.Date)
	}
	start, err := scheduler.ParseClock(task.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	startsAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, s.location)
	return startsAt.Add(-s.reminderLead), nil
}

// CompleteTask removes a finished task and credits its crew.
func (s *PlanningService) CompleteTask(ctx context.Context, id string) (models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.tasks.RemoveTask(ctx, id); err != nil {
		return models.Task{}, err
	}
	if crew, ok := task.Crew(); ok {
		if err := s.roster.IncrementTasksCompleted(ctx, crew); err != nil {
			return task, fmt.Errorf("Error trying to credit crew of task %s: %w", id, err)
		}
	}
	logging.Logger.Infof("Event ID: TASK_COMPLETED, Description: Task %s marked as done", id)
	return task, nil
}

func (s *PlanningService) DeleteTask(ctx context.Context, id string) error {
	if err := s.tasks.RemoveTask(ctx, id); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted", id)
	return nil
}

func (s *PlanningService) TasksForDate(ctx context.Context, date string) ([]models.Task, error) {
	if err := scheduler.ValidateDate(date); err != nil {
		return nil, &ValidationError{Field: "date", Message: "Date invalide", Err: err}
	}
	tasks, err := s.tasks.LoadTasksForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("Error trying to load tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

type DailyStats struct {
	Date          string `json:"date"`
	TaskCount     int    `json:"taskCount"`
	TotalPackages int    `json:"totalPackages"`
}

func (s *PlanningService) DailyStats(ctx context.Context, date string) (DailyStats, error) {
	tasks, err := s.TasksForDate(ctx, date)
	if err != nil {
		return DailyStats{}, err
	}
	stats := DailyStats{Date: date, TaskCount: len(tasks)}
	for _, t := range tasks {
		stats.TotalPackages += t.Packages
	}
	return stats, nil
}

// Import loads previously recorded tasks in one batch. Missing ids are
// generated; a missing end time is projected from the package count and
// team size with a good palette. Members must exist in the roster; a task
// without a member list is kept as a legacy record.
func (s *PlanningService) Import(ctx context.Context, tasks []models.Task) (int, error) {
	roster, err := s.roster.LoadRoster(ctx)
	if err != nil {
		return 0, fmt.Errorf("Error trying to load roster: %w", err)
	}
	known := make(map[int]bool, len(roster))
	for _, e := range roster {
		known[e.ID] = true
	}

	batch := make([]models.Task, 0, len(tasks))
	for i, t := range tasks {
		if err := scheduler.ValidateDate(t.Date); err != nil {
			return 0, &ValidationError{Field: fmt.Sprintf("tasks[%d].date", i), Message: "Date invalide", Err: err}
		}
		start, err := scheduler.ParseClock(t.StartTime)
		if err != nil {
			return 0, &ValidationError{Field: fmt.Sprintf("tasks[%d].startTime", i), Message: "Heure de début invalide", Err: err}
		}
		if t.ID == "" {
			t.ID = s.newID()
		}
		if t.EndTime == "" {
			calc := scheduler.CalculateDuration(t.Packages, true, t.TeamSize)
			slot, err := scheduler.SlotFor(start, calc.TotalTime)
			if err != nil {
				return 0, &ValidationError{Field: fmt.Sprintf("tasks[%d].endTime", i), Message: "Heure de fin invalide", Err: err}
			}
			t.EndTime = slot.End.String()
			if t.Duration == "" {
				t.Duration = calc.FormattedTime
			}
		} else {
			slot, err := scheduler.ParseInterval(t.StartTime, t.EndTime)
			if err != nil {
				return 0, &ValidationError{Field: fmt.Sprintf("tasks[%d].endTime", i), Message: "Heure de fin invalide", Err: err}
			}
			if slot.End <= slot.Start {
				return 0, invalid(fmt.Sprintf("tasks[%d].endTime", i), "L'heure de fin doit suivre l'heure de début (%s)", slot)
			}
		}
		if !t.IsLegacy() {
			t.TeamMembers = uniqueMembers(t.TeamMembers)
			for _, id := range t.TeamMembers {
				if !known[id] {
					return 0, invalid(fmt.Sprintf("tasks[%d].teamMembers", i), "Employé inconnu : %d", id)
				}
			}
		}
		batch = append(batch, t)
	}

	if err := s.tasks.ImportTasks(ctx, batch); err != nil {
		return 0, fmt.Errorf("Error trying to import tasks: %w", err)
	}
	logging.Logger.Infof("Event ID: TASKS_IMPORTED, Description: Imported %d tasks", len(batch))
	return len(batch), nil
}

func (s *PlanningService) WorkingHours(ctx context.Context) (models.WorkingHours, error) {
	return s.settings.GetWorkingHours(ctx)
}

func (s *PlanningService) UpdateWorkingHours(ctx context.Context, wh models.WorkingHours) (models.WorkingHours, error) {
	if err := scheduler.ValidateWorkingHours(wh); err != nil {
		return models.WorkingHours{}, &ValidationError{Field: "workingHours", Message: "Plage horaire invalide", Err: err}
	}
	// Normalise "5:00" to "05:00".
	start, _ := scheduler.ParseClock(wh.Start)
	end, _ := scheduler.ParseClock(wh.End)
	wh = models.WorkingHours{Start: start.String(), End: end.String()}

	if err := s.settings.SaveWorkingHours(ctx, wh); err != nil {
		return models.WorkingHours{}, fmt.Errorf("Error trying to save working hours: %w", err)
	}
	return wh, nil
}

type TimeSlots struct {
	Hours   []string `json:"hours"`
	Hour    string   `json:"hour"`
	Minutes []string `json:"minutes"`
}

// TimeSlots lists the start times a manager may pick. hour selects which
// hour the minutes are listed for; nil means the opening hour.
func (s *PlanningService) TimeSlots(ctx context.Context, hour *int) (TimeSlots, error) {
	wh, err := s.settings.GetWorkingHours(ctx)
	if err != nil {
		return TimeSlots{}, fmt.Errorf("Error trying to load working hours: %w", err)
	}
	hours, err := scheduler.AvailableHours(wh)
	if err != nil {
		return TimeSlots{}, err
	}

	if len(hours) == 0 {
		return TimeSlots{}, fmt.Errorf("working hours %s-%s leave no start time", wh.Start, wh.End)
	}

	var h int
	if hour != nil {
		h = *hour
	} else {
		h, _ = strconv.Atoi(hours[0])
	}
	selected := fmt.Sprintf("%02d", h)
	if !slices.Contains(hours, selected) {
		return TimeSlots{}, invalid("hour", "L'heure %s est hors de la plage %s-%s", selected, wh.Start, wh.End)
	}
	minutes, err := scheduler.AvailableMinutes(wh, h)
	if err != nil {
		return TimeSlots{}, err
	}
	return TimeSlots{Hours: hours, Hour: selected, Minutes: minutes}, nil
}

func uniqueMembers(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func draftError(err error) error {
	switch {
	case errors.Is(err, scheduler.ErrInvalidDate):
		return &ValidationError{Field: "date", Message: "Date invalide", Err: err}
	case errors.Is(err, scheduler.ErrCrossesMidnight):
		return &ValidationError{Field: "startTime", Message: "La tâche se terminerait après minuit", Err: err}
	case errors.Is(err, scheduler.ErrInvalidClock):
		return &ValidationError{Field: "startTime", Message: "Heure de début invalide", Err: err}
	}
	return err
}

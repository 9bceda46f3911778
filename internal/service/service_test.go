package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/models"
	"github.com/HaGotHem/optines/internal/repository"
	"github.com/HaGotHem/optines/internal/scheduler"
)

const day = "2025-06-02"

type fakeNotifier struct {
	reminders []time.Time
	alerts    []client.ConflictAlert
	err       error
}

func (f *fakeNotifier) ScheduleReminder(_ context.Context, _ models.Task, at time.Time) error {
	f.reminders = append(f.reminders, at)
	return f.err
}

func (f *fakeNotifier) SendConflictAlert(_ context.Context, alert client.ConflictAlert) error {
	f.alerts = append(f.alerts, alert)
	return f.err
}

type fixture struct {
	planning *PlanningService
	roster   *RosterService
	notifier *fakeNotifier
	tasks    *repository.TaskRepository
	staff    *repository.EmployeeRepository
}

// newFixture opens a fresh database with Alice, Bob and Chloé on the roster
// (ids 1, 2, 3).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tasks := repository.NewTaskRepository(db)
	staff := repository.NewEmployeeRepository(db)
	settings := repository.NewSettingsRepository(db, scheduler.DefaultWorkingHours())
	notifier := &fakeNotifier{}

	planning := NewPlanningService(tasks, staff, settings, notifier, PlanningOptions{
		Manager:      Manager{Name: "Jean Dupont", Section: "Frais", Initials: "JD"},
		ReminderLead: 15 * time.Minute,
		Location:     time.UTC,
	})
	seq := 0
	planning.newID = func() string {
		seq++
		return fmt.Sprintf("task-%d", seq)
	}

	for _, name := range []string{"Alice", "Bob", "Chloé"} {
		_, err := staff.CreateEmployee(context.Background(), models.Employee{
			Name: name, Role: "Préparateur", Section: "Frais",
			Status: models.StatusOffline, Shift: models.ShiftMorning,
		})
		if err != nil {
			t.Fatalf("CreateEmployee: %v", err)
		}
	}

	return &fixture{
		planning: planning,
		roster:   NewRosterService(staff, tasks),
		notifier: notifier,
		tasks:    tasks,
		staff:    staff,
	}
}

func draft(start, packages string, members ...int) scheduler.Draft {
	return scheduler.Draft{Date: day, StartTime: start, Packages: packages, TeamMembers: members}
}

func validationField(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return ve.Field
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.planning.CreateTask(ctx, draft("06:00", "90", 1, 2), false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID != "task-1" || task.Title != "Frais - JD" {
		t.Errorf("unexpected identity %q / %q", task.ID, task.Title)
	}
	if task.EndTime != "06:30" || task.Duration != "0h 30min 00s" {
		t.Errorf("end %s duration %s, want 06:30 and 0h 30min 00s", task.EndTime, task.Duration)
	}
	if task.TeamSize != 2 || task.Packages != 90 {
		t.Errorf("teamSize %d packages %d", task.TeamSize, task.Packages)
	}

	saved, err := f.tasks.LoadTasksForDate(ctx, day)
	if err != nil {
		t.Fatalf("LoadTasksForDate: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != task.ID {
		t.Fatalf("task not persisted: %+v", saved)
	}

	want := time.Date(2025, 6, 2, 5, 45, 0, 0, time.UTC)
	if len(f.notifier.reminders) != 1 || !f.notifier.reminders[0].Equal(want) {
		t.Errorf("reminders = %v, want [%v]", f.notifier.reminders, want)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft scheduler.Draft
		field string
	}{
		{"bad date", scheduler.Draft{Date: "02/06/2025", StartTime: "06:00", Packages: "10", TeamMembers: []int{1}}, "date"},
		{"bad start", draft("6h", "10", 1), "startTime"},
		{"no packages", draft("06:00", "", 1), "packages"},
		{"non numeric packages", draft("06:00", "abc", 1), "packages"},
		{"no members", draft("06:00", "10"), "teamMembers"},
		{"unknown member", draft("06:00", "10", 42), "teamMembers"},
		{"before opening", draft("04:50", "10", 1), "startTime"},
		{"after closing", draft("21:10", "10", 1), "startTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.planning.CreateTask(context.Background(), tt.draft, false)
			if got := validationField(t, err); got != tt.field {
				t.Errorf("field = %q, want %q (%v)", got, tt.field, err)
			}
		})
	}
}

func TestCreateTaskAtClosingTimeIsAllowed(t *testing.T) {
	f := newFixture(t)
	if _, err := f.planning.CreateTask(context.Background(), draft("21:00", "10", 1), false); err != nil {
		t.Fatalf("CreateTask at closing time: %v", err)
	}
}

func TestCreateTaskRejectsOccupiedMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.planning.CreateTask(ctx, draft("06:00", "90", 1, 2), false); err != nil {
		t.Fatalf("first task: %v", err)
	}
	// Membership blocks for the whole day, not only overlapping slots.
	_, err := f.planning.CreateTask(ctx, draft("14:00", "90", 2, 3), false)
	if validationField(t, err) != "teamMembers" {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(err.Error(), "Bob") || strings.Contains(err.Error(), "Chloé") {
		t.Errorf("message should name only Bob: %v", err)
	}
}

func TestCreateTaskNoHeadcountLeft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.planning.CreateTask(ctx, draft("06:00", "90", 1, 2, 3), false); err != nil {
		t.Fatalf("first task: %v", err)
	}
	_, err := f.planning.CreateTask(ctx, draft("14:00", "90", 1), false)
	if validationField(t, err) != "teamMembers" || !strings.Contains(err.Error(), "Aucun employé disponible") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCreateTaskAcrossMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.planning.UpdateWorkingHours(ctx, models.WorkingHours{Start: "05:00", End: "23:50"}); err != nil {
		t.Fatalf("UpdateWorkingHours: %v", err)
	}
	_, err := f.planning.CreateTask(ctx, draft("23:30", "100", 1), false)
	if !errors.Is(err, scheduler.ErrCrossesMidnight) {
		t.Fatalf("expected ErrCrossesMidnight, got %v", err)
	}
	if validationField(t, err) != "startTime" {
		t.Errorf("unexpected field for %v", err)
	}
}

func TestCreateTaskConflictNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 90 packages alone take an hour: 08:30-09:30 runs into the team meeting.
	_, err := f.planning.CreateTask(ctx, draft("08:30", "90", 1), false)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if len(ce.Conflicts) != 1 || ce.Conflicts[0].Type != models.EventTypeMeeting {
		t.Errorf("conflicts = %+v", ce.Conflicts)
	}
	if ce.Task.EndTime != "09:30" {
		t.Errorf("pending task end = %s", ce.Task.EndTime)
	}
	if len(f.notifier.alerts) != 1 || f.notifier.alerts[0].Title != "Frais - JD" {
		t.Errorf("alerts = %+v", f.notifier.alerts)
	}
	if saved, _ := f.tasks.LoadTasksForDate(ctx, day); len(saved) != 0 {
		t.Fatalf("conflicting task was saved")
	}

	task, err := f.planning.CreateTask(ctx, draft("08:30", "90", 1), true)
	if err != nil {
		t.Fatalf("confirmed CreateTask: %v", err)
	}
	if saved, _ := f.tasks.LoadTasksForDate(ctx, day); len(saved) != 1 || saved[0].ID != task.ID {
		t.Errorf("confirmed task not saved")
	}
	if len(f.notifier.alerts) != 1 {
		t.Errorf("confirmation should not alert again")
	}
}

func TestCreateTaskSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("webhook down")

	if _, err := f.planning.CreateTask(context.Background(), draft("06:00", "90", 1), false); err != nil {
		t.Fatalf("CreateTask should not fail on notifier errors: %v", err)
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.planning.CreateTask(ctx, draft("06:00", "90", 1), false); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	p, err := f.planning.Preview(ctx, draft("06:15", "45", 2))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.EndTime != "06:45" || p.Calculation.TotalTime != 1800 {
		t.Errorf("end %s total %d", p.EndTime, p.Calculation.TotalTime)
	}
	if p.AvailableHeadcount != 2 {
		t.Errorf("headcount = %d, want 2", p.AvailableHeadcount)
	}
	if len(p.Conflicts) != 1 || p.Conflicts[0].TaskID != "task-1" {
		t.Errorf("conflicts = %+v", p.Conflicts)
	}
	if !p.WithinWorkingHours {
		t.Error("06:15 should be within working hours")
	}
	if len(p.Availability) != 3 || !p.Availability[0].Assigned || !p.Availability[1].Selected {
		t.Errorf("availability = %+v", p.Availability)
	}

	again, err := f.planning.Preview(ctx, draft("06:15", "45", 2))
	if err != nil || again.EndTime != p.EndTime || len(again.Conflicts) != len(p.Conflicts) {
		t.Errorf("preview is not repeatable: %+v, %v", again, err)
	}
}

func TestCompleteAndDeleteTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.planning.CreateTask(ctx, draft("06:00", "90", 1, 3), false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := f.planning.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	roster, _ := f.staff.LoadRoster(ctx)
	for i, want := range []int{1, 0, 1} {
		if roster[i].TasksCompleted != want {
			t.Errorf("%s tasksCompleted = %d, want %d", roster[i].Name, roster[i].TasksCompleted, want)
		}
	}
	if _, err := f.planning.CompleteTask(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second completion: %v", err)
	}

	other, err := f.planning.CreateTask(ctx, draft("10:00", "10", 2), false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := f.planning.DeleteTask(ctx, other.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := f.planning.DeleteTask(ctx, other.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
	roster, _ = f.staff.LoadRoster(ctx)
	if roster[1].TasksCompleted != 0 {
		t.Errorf("deleting must not credit the crew")
	}
}

func TestImportLegacyTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.planning.Import(ctx, []models.Task{
		{Title: "ancienne", Date: day, StartTime: "07:00", Packages: 45, TeamSize: 1},
		{ID: "legacy-2", Title: "ancienne 2", Date: day, StartTime: "11:00", EndTime: "12:00", Packages: 20, TeamSize: 4},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d", n)
	}

	tasks, err := f.planning.TasksForDate(ctx, day)
	if err != nil {
		t.Fatalf("TasksForDate: %v", err)
	}
	if len(tasks) != 2 || tasks[0].EndTime != "07:30" || tasks[0].ID == "" {
		t.Fatalf("unexpected import result %+v", tasks)
	}
	if !tasks[0].IsLegacy() || !tasks[1].IsLegacy() {
		t.Errorf("imported records without members should stay legacy")
	}

	// Legacy tasks hold nobody, so everyone is still free.
	p, err := f.planning.Preview(ctx, draft("07:10", "10", 1))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.AvailableHeadcount != 3 {
		t.Errorf("headcount = %d, want 3", p.AvailableHeadcount)
	}
	if len(p.Conflicts) != 1 {
		t.Errorf("legacy tasks still take part in conflicts: %+v", p.Conflicts)
	}

	stats, err := f.planning.DailyStats(ctx, day)
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.TaskCount != 2 || stats.TotalPackages != 65 {
		t.Errorf("stats = %+v", stats)
	}

	if _, err := f.planning.Import(ctx, []models.Task{{Date: day, StartTime: "late"}}); validationField(t, err) != "tasks[0].startTime" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCreateTaskHoldsAtLeastOneMinute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	short, err := f.planning.CreateTask(ctx, draft("06:00", "1", 1), false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if short.EndTime != "06:01" {
		t.Errorf("EndTime = %s, want 06:01", short.EndTime)
	}

	// The slot is real, so a task starting inside it clashes.
	_, err = f.planning.CreateTask(ctx, draft("06:00", "40", 2, 3), false)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if ce.Task.EndTime != "06:01" {
		t.Errorf("zero-length total EndTime = %s, want 06:01", ce.Task.EndTime)
	}

	if _, err := f.planning.CreateTask(ctx, draft("06:01", "90", 2), false); err != nil {
		t.Errorf("task touching the end must not clash: %v", err)
	}
}

func TestImportRejectsBadRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		task  models.Task
		field string
	}{
		{"inverted", models.Task{Date: day, StartTime: "10:00", EndTime: "09:00", TeamMembers: []int{1}}, "tasks[0].endTime"},
		{"empty slot", models.Task{Date: day, StartTime: "10:00", EndTime: "10:00"}, "tasks[0].endTime"},
		{"unknown member", models.Task{Date: day, StartTime: "10:00", EndTime: "11:00", TeamMembers: []int{1, 42}}, "tasks[0].teamMembers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.planning.Import(ctx, []models.Task{tt.task})
			if got := validationField(t, err); got != tt.field {
				t.Errorf("field = %s, want %s", got, tt.field)
			}
		})
	}

	saved, err := f.tasks.LoadTasksForDate(ctx, day)
	if err != nil {
		t.Fatalf("LoadTasksForDate: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("rejected imports were stored: %+v", saved)
	}
}

func TestImportDeduplicatesMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.planning.Import(ctx, []models.Task{
		{ID: "dup", Date: day, StartTime: "06:00", EndTime: "07:00", Packages: 10, TeamSize: 2, TeamMembers: []int{1, 1}},
		{ID: "tiny", Date: day, StartTime: "08:00", Packages: 1, TeamSize: 1, TeamMembers: []int{2}},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	tasks, err := f.planning.TasksForDate(ctx, day)
	if err != nil {
		t.Fatalf("TasksForDate: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	if len(tasks[0].TeamMembers) != 1 || tasks[0].TeamMembers[0] != 1 {
		t.Errorf("TeamMembers = %v, want [1]", tasks[0].TeamMembers)
	}
	if tasks[1].EndTime != "08:01" {
		t.Errorf("projected EndTime = %s, want 08:01", tasks[1].EndTime)
	}
}

func TestWorkingHoursAndTimeSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slots, err := f.planning.TimeSlots(ctx, nil)
	if err != nil {
		t.Fatalf("TimeSlots: %v", err)
	}
	if len(slots.Hours) != 17 || slots.Hour != "05" || len(slots.Minutes) != 6 {
		t.Errorf("default slots = %+v", slots)
	}

	closing := 21
	slots, err = f.planning.TimeSlots(ctx, &closing)
	if err != nil {
		t.Fatalf("TimeSlots: %v", err)
	}
	if len(slots.Minutes) != 1 || slots.Minutes[0] != "00" {
		t.Errorf("closing hour minutes = %v", slots.Minutes)
	}

	early := 3
	if _, err := f.planning.TimeSlots(ctx, &early); validationField(t, err) != "hour" {
		t.Errorf("unexpected error %v", err)
	}

	if _, err := f.planning.UpdateWorkingHours(ctx, models.WorkingHours{Start: "20:00", End: "06:00"}); validationField(t, err) != "workingHours" {
		t.Errorf("unexpected error %v", err)
	}
	wh, err := f.planning.UpdateWorkingHours(ctx, models.WorkingHours{Start: "6:00", End: "20:30"})
	if err != nil {
		t.Fatalf("UpdateWorkingHours: %v", err)
	}
	if wh.Start != "06:00" {
		t.Errorf("start not normalised: %q", wh.Start)
	}
	got, _ := f.planning.WorkingHours(ctx)
	if got != wh {
		t.Errorf("stored %+v, want %+v", got, wh)
	}
}

func TestRosterCreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.roster.Create(ctx, models.Employee{Name: " Dana ", Role: "Caissière", Section: "Épicerie", Location: "Allée 4"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Name != "Dana" || e.Shift != models.ShiftMorning || e.Status != models.StatusOffline {
		t.Errorf("defaults not applied: %+v", e)
	}

	if _, err := f.roster.Create(ctx, models.Employee{Name: "X", Role: "Y", Section: "Z"}); validationField(t, err) != "location" {
		t.Errorf("missing location: %v", err)
	}
	if _, err := f.roster.Create(ctx, models.Employee{Name: "X", Role: "Y", Section: "Z", Location: "L", Shift: "nuit"}); validationField(t, err) != "shift" {
		t.Errorf("unknown shift: %v", err)
	}

	if err := f.staff.IncrementTasksCompleted(ctx, []int{e.ID}); err != nil {
		t.Fatalf("IncrementTasksCompleted: %v", err)
	}
	e.Status = models.StatusBusy
	e.TasksCompleted = 0
	updated, err := f.roster.Update(ctx, e)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.TasksCompleted != 1 || updated.Status != models.StatusBusy {
		t.Errorf("update = %+v", updated)
	}

	if _, err := f.roster.Update(ctx, models.Employee{ID: 99, Name: "A", Role: "B", Section: "C"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}
	if err := f.roster.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestRosterSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	email := "dana@example.com"
	if _, err := f.roster.Create(ctx, models.Employee{Name: "Dana", Role: "Caissière", Section: "Épicerie", Location: "Allée 4", Email: &email, Shift: models.ShiftEvening}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 4},
		{"  ", 4},
		{"FRAIS", 3},
		{"chlo", 1},
		{"example.com", 1},
		{"soir", 1},
		{"nobody", 0},
	}
	for _, tt := range tests {
		entries, err := f.roster.List(ctx, tt.query)
		if err != nil {
			t.Fatalf("List(%q): %v", tt.query, err)
		}
		if len(entries) != tt.want {
			t.Errorf("List(%q) = %d entries, want %d", tt.query, len(entries), tt.want)
		}
	}
}

func TestTeamStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	roster, _ := f.staff.LoadRoster(ctx)
	for i, perf := range []int{90, 75, 80} {
		e := roster[i]
		e.Performance = perf
		if i == 0 {
			e.Status = models.StatusBusy
		}
		if err := f.staff.UpdateEmployee(ctx, e); err != nil {
			t.Fatalf("UpdateEmployee: %v", err)
		}
	}
	if _, err := f.planning.CreateTask(ctx, draft("06:00", "90", 1), false); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	stats, err := f.roster.TeamStats(ctx, day)
	if err != nil {
		t.Fatalf("TeamStats: %v", err)
	}
	want := TeamStats{TotalEmployees: 3, AveragePerformance: 82, ActiveEmployees: 1, PackagesToday: 90}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		performance int
		want        PerformanceTier
	}{
		{100, TierHigh},
		{90, TierHigh},
		{89, TierMedium},
		{75, TierMedium},
		{74, TierLow},
		{0, TierLow},
	}
	for _, tt := range tests {
		if got := TierFor(tt.performance); got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.performance, got, tt.want)
		}
	}
}

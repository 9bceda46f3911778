package service

import (
	"context"

	"github.com/HaGotHem/optines/internal/models"
)

type TaskStore interface {
	LoadTasksForDate(ctx context.Context, date string) ([]models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	AppendTask(ctx context.Context, task models.Task) error
	ImportTasks(ctx context.Context, tasks []models.Task) error
	RemoveTask(ctx context.Context, id string) error
}

type RosterStore interface {
	LoadRoster(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id int) (models.Employee, error)
	CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error)
	UpdateEmployee(ctx context.Context, e models.Employee) error
	DeleteEmployee(ctx context.Context, id int) error
	IncrementTasksCompleted(ctx context.Context, ids []int) error
}

type SettingsStore interface {
	GetWorkingHours(ctx context.Context) (models.WorkingHours, error)
	SaveWorkingHours(ctx context.Context, wh models.WorkingHours) error
}

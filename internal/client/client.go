package client

import (
	"context"
	"time"

	"github.com/HaGotHem/optines/internal/models"
)

type ConflictAlert struct {
	Title     string            `json:"title"`
	Conflicts []models.Conflict `json:"conflicts"`
}

type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, task models.Task, at time.Time) error
}

type ConflictAlerter interface {
	SendConflictAlert(ctx context.Context, alert ConflictAlert) error
}

type Notifier interface {
	ReminderScheduler
	ConflictAlerter
}

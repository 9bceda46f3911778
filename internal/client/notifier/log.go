package notifier

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/models"
)

// LogNotifier records notifications through the logger. Used when no
// webhook is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ScheduleReminder(_ context.Context, task models.Task, at time.Time) error {
	n.logger.WithFields(logrus.Fields{
		"task":     task.ID,
		"remindAt": at.Format(time.RFC3339),
	}).Infof("Event ID: REMINDER_SCHEDULED, Description: reminder for %q at %s on %s", task.Title, task.StartTime, task.Date)
	return nil
}

func (n *LogNotifier) SendConflictAlert(_ context.Context, alert client.ConflictAlert) error {
	n.logger.WithField("conflicts", len(alert.Conflicts)).
		Warnf("Event ID: CONFLICT_ALERT, Description: %s", alert.Title)
	return nil
}

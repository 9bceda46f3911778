package service

import (
	"fmt"
	"strings"

	"github.com/HaGotHem/optines/internal/models"
)

// ValidationError is a rejected input. Message is meant for the manager.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError holds a task that was built but not saved because its slot
// clashes with other items. Resubmitting with confirmation saves it.
type ConflictError struct {
	Task      models.Task
	Conflicts []models.Conflict
}

func (e *ConflictError) Error() string {
	titles := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		titles[i] = fmt.Sprintf("%s (%s-%s)", c.Title, c.StartTime, c.EndTime)
	}
	return fmt.Sprintf("task %s conflicts with %s", e.Task.Title, strings.Join(titles, ", "))
}

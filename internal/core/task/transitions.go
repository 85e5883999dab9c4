// Package task contains the pure business logic for task status
// transitions. Guards are pure functions that evaluate preconditions
// without side effects.
package task

import (
	"fmt"

	"github.com/example/foreman/internal/models"
)

// InvalidTransitionError reports an attempt to move a task between
// statuses outside the allowed set. It signals a bug in the caller, not
// a recoverable condition: the orchestrator halts on it.
type InvalidTransitionError struct {
	TaskRef string
	From    string
	To      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for %s: %s -> %s", e.TaskRef, e.From, e.To)
}

// allowed is the full transition set. blocked and done are terminal.
var allowed = map[string][]string{
	models.TaskStatusPending:    {models.TaskStatusInProgress},
	models.TaskStatusInProgress: {models.TaskStatusDone, models.TaskStatusBlocked},
	models.TaskStatusDone:       {},
	models.TaskStatusBlocked:    {},
}

// CanTransition evaluates whether a task may move from one status to
// another. Returns nil if allowed, *InvalidTransitionError otherwise.
func CanTransition(taskRef, from, to string) error {
	for _, next := range allowed[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{TaskRef: taskRef, From: from, To: to}
}

// InitialStatus returns the status for a freshly authored task.
func InitialStatus() string {
	return models.TaskStatusPending
}

// Ref formats the stable ordinal reference for a task.
func Ref(ordinal int) string {
	return fmt.Sprintf("TASK-%03d", ordinal)
}

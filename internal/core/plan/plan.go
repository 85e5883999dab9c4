// Package plan contains the pure business logic for plan validation and
// ready-task selection. This is part of the functional core - no I/O,
// only pure functions over task lists.
package plan

import (
	"fmt"

	"github.com/example/foreman/internal/models"
)

// CorruptPlanError reports a plan whose backing representation cannot be
// interpreted as a valid ordered task list. It is fatal: no task from a
// corrupt plan is ever dispatched.
type CorruptPlanError struct {
	Reason string
}

func (e *CorruptPlanError) Error() string {
	return fmt.Sprintf("corrupt plan: %s", e.Reason)
}

// Validate checks the structural invariants of an ordered task list:
// ordinals are contiguous from 1 in list order, every task has at least
// one acceptance criterion, and every parallel group has at least two
// members. A violation returns *CorruptPlanError.
func Validate(tasks []*models.Task) error {
	if len(tasks) == 0 {
		return &CorruptPlanError{Reason: "plan has no tasks"}
	}

	groups := map[string]int{}
	for i, t := range tasks {
		if t.Ordinal != i+1 {
			return &CorruptPlanError{Reason: fmt.Sprintf("task %d has ordinal %d, want %d", i+1, t.Ordinal, i+1)}
		}
		if t.Title == "" {
			return &CorruptPlanError{Reason: fmt.Sprintf("task %d has no title", t.Ordinal)}
		}
		if len(t.Criteria) == 0 {
			return &CorruptPlanError{Reason: fmt.Sprintf("task %d has no acceptance criteria", t.Ordinal)}
		}
		if t.ParallelGroup != "" {
			groups[t.ParallelGroup]++
		}
	}

	for name, count := range groups {
		if count < 2 {
			return &CorruptPlanError{Reason: fmt.Sprintf("parallel group %q has only one member", name)}
		}
	}

	return nil
}

// NextReady selects the next task(s) eligible for dispatch from a plan
// ordered by ordinal.
//
// Selection rules:
//   - The head of the remaining pending tasks wins (plan order, lowest
//     ordinal first).
//   - If the head carries a parallel group, the whole group is returned
//     together - but only once no member of the group is still
//     in_progress. Partial groups are never split.
//   - Terminal members (done/blocked) drop out of the group; the
//     remaining pending members still dispatch together. This covers
//     resuming a run that stopped mid-group. It is a deliberate
//     loosening of all-members-pending gating: requiring the full group
//     pending again would deadlock resumption, since terminal members
//     never return to pending.
//
// An empty result means the plan has no dispatchable work left.
func NextReady(tasks []*models.Task) []*models.Task {
	var head *models.Task
	for _, t := range tasks {
		if t.Status == models.TaskStatusPending {
			head = t
			break
		}
	}
	if head == nil {
		return nil
	}

	if head.ParallelGroup == "" {
		return []*models.Task{head}
	}

	var members []*models.Task
	for _, t := range tasks {
		if t.ParallelGroup != head.ParallelGroup {
			continue
		}
		switch t.Status {
		case models.TaskStatusPending:
			members = append(members, t)
		case models.TaskStatusInProgress:
			// A member is mid-flight; the group is not dispatchable as
			// a whole yet.
			return nil
		}
	}
	return members
}

// Summary partitions a plan's tasks by terminal outcome for the final
// run report.
type Summary struct {
	Done    []*models.Task
	Blocked []*models.Task
	Pending []*models.Task
}

// Summarize builds the done/blocked partition of a task list.
func Summarize(tasks []*models.Task) Summary {
	var s Summary
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusDone:
			s.Done = append(s.Done, t)
		case models.TaskStatusBlocked:
			s.Blocked = append(s.Blocked, t)
		default:
			s.Pending = append(s.Pending, t)
		}
	}
	return s
}

// Clean reports whether a summary represents full success: every task
// done, none blocked or left behind.
func (s Summary) Clean() bool {
	return len(s.Blocked) == 0 && len(s.Pending) == 0
}

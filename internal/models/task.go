// Package models contains domain types for foreman entities.
// SQL persistence lives in internal/adapters/sqlite/*.go
package models

import "time"

// Plan represents an ordered list of tasks authored as a unit.
type Plan struct {
	ID        string
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Plan status constants
const (
	PlanStatusActive   = "active"
	PlanStatusComplete = "complete"
)

// Task represents a single unit of work within a plan.
// Identity is the ordinal position within the plan; order encodes
// dependency intent.
type Task struct {
	ID            string
	PlanID        string
	Ordinal       int
	Title         string
	Description   string
	ParallelGroup string
	Status        string
	Attempts      int
	Criteria      []Criterion
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClaimedAt     time.Time
	CompletedAt   time.Time
}

// Criterion is a single checkable acceptance condition of a task.
// Check is the command the verifier runs independently of the worker's
// self-report; Evidence names the proof the check is expected to produce.
type Criterion struct {
	Position    int
	Description string
	Check       string
	Evidence    string
}

// Task status constants. These are the only persisted states; the
// orchestrator's verifying/retry-pending phases exist solely inside the
// run loop and are never written to the plan store.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusBlocked    = "blocked"
)

// Terminal reports whether a status admits no further transitions.
func Terminal(status string) bool {
	return status == TaskStatusDone || status == TaskStatusBlocked
}

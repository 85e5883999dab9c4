// Package secondary defines the driven-side ports: interfaces the
// application services depend on, implemented by adapters.
package secondary

import (
	"context"
	"fmt"

	"github.com/example/foreman/internal/models"
)

// StorageUnavailableError reports an I/O failure of the plan store or
// ledger. Callers retry with backoff a bounded number of times before
// treating it as fatal.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// PlanStore is the durable, ordered task list with guarded status
// updates. All writes go through the orchestrator; workers never touch
// the store directly.
type PlanStore interface {
	// CreatePlan persists a plan and its ordered tasks in one shot.
	// Tasks must already satisfy the core plan invariants.
	CreatePlan(ctx context.Context, plan *models.Plan, tasks []*models.Task) error

	// GetPlan retrieves a plan by ID.
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)

	// ListPlans retrieves all plans, oldest first.
	ListPlans(ctx context.Context) ([]*models.Plan, error)

	// ListTasks retrieves a plan's tasks in ordinal order with their
	// criteria attached. Fails with *plan.CorruptPlanError if the
	// stored rows cannot be interpreted as valid task records.
	ListTasks(ctx context.Context, planID string) ([]*models.Task, error)

	// GetTask retrieves one task by its ref within a plan.
	GetTask(ctx context.Context, planID, taskRef string) (*models.Task, error)

	// MarkStatus transitions a task's status. Fails with
	// *task.InvalidTransitionError when the requested transition is
	// outside the allowed set.
	MarkStatus(ctx context.Context, planID, taskRef, newStatus string) error

	// IncrementAttempts bumps a task's delegation attempt counter and
	// returns the new count.
	IncrementAttempts(ctx context.Context, planID, taskRef string) (int, error)

	// UpdatePlanStatus sets a plan's status.
	UpdatePlanStatus(ctx context.Context, planID, status string) error

	// NextPlanID returns the next available plan ID.
	NextPlanID(ctx context.Context) (string, error)
}

// LedgerStore is the append-only run history. Append never rejects on
// content; reads never block writers.
type LedgerStore interface {
	// Append writes one immutable entry. I/O failure surfaces as
	// *StorageUnavailableError.
	Append(ctx context.Context, entry models.LedgerEntry) error

	// Read returns entries matching the filter in append order.
	Read(ctx context.Context, filter LedgerFilter) ([]models.LedgerEntry, error)
}

// LedgerFilter selects ledger entries on read. Zero values match
// everything.
type LedgerFilter struct {
	PlanID  string
	TaskRef string
	Kind    string
}

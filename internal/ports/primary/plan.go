// Package primary defines the driving-side ports: the service
// interfaces the CLI consumes, with request/response structs at the
// boundary.
package primary

import "context"

// PlanService defines the primary port for plan operations.
type PlanService interface {
	// ImportPlan loads a plan document, validates it, and persists it.
	ImportPlan(ctx context.Context, req ImportPlanRequest) (*ImportPlanResponse, error)

	// GetPlan retrieves a plan with its tasks.
	GetPlan(ctx context.Context, planID string) (*Plan, error)

	// ListPlans lists all plans.
	ListPlans(ctx context.Context) ([]*Plan, error)

	// ListTasks lists a plan's tasks in plan order.
	ListTasks(ctx context.Context, planID string) ([]*Task, error)

	// GetTask retrieves one task with its criteria.
	GetTask(ctx context.Context, planID, taskRef string) (*Task, error)
}

// ImportPlanRequest contains parameters for importing a plan document.
type ImportPlanRequest struct {
	// Path to the plan document on disk.
	Path string
}

// ImportPlanResponse contains the result of a plan import.
type ImportPlanResponse struct {
	PlanID    string
	TaskCount int
}

// Plan represents a plan at the port boundary.
type Plan struct {
	ID        string
	Title     string
	Status    string
	CreatedAt string
	Tasks     []*Task
}

// Task represents a task at the port boundary.
type Task struct {
	Ref           string
	Ordinal       int
	Title         string
	Description   string
	ParallelGroup string
	Status        string
	Attempts      int
	Criteria      []Criterion
	CreatedAt     string
	CompletedAt   string
}

// Criterion represents an acceptance criterion at the port boundary.
type Criterion struct {
	Position    int
	Description string
	Check       string
	Evidence    string
}

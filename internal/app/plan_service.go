// Package app contains the application services that orchestrate
// business logic over the secondary ports.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// PlanServiceImpl implements the PlanService interface.
type PlanServiceImpl struct {
	planStore secondary.PlanStore
	loader    secondary.PlanLoader
	policy    config.Policy
}

// NewPlanService creates a new PlanService with injected dependencies.
func NewPlanService(planStore secondary.PlanStore, loader secondary.PlanLoader, policy config.Policy) *PlanServiceImpl {
	return &PlanServiceImpl{planStore: planStore, loader: loader, policy: policy}
}

// ImportPlan loads a plan document, validates it, and persists it. A
// document that fails validation never reaches the store.
func (s *PlanServiceImpl) ImportPlan(ctx context.Context, req primary.ImportPlanRequest) (*primary.ImportPlanResponse, error) {
	plan, tasks, err := s.loader.Load(req.Path)
	if err != nil {
		return nil, err
	}

	planID, err := s.planStore.NextPlanID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan ID: %w", err)
	}
	plan.ID = planID
	for _, t := range tasks {
		t.PlanID = planID
	}

	err = withStorageRetry(ctx, s.policy.StorageRetries, func() error {
		return s.planStore.CreatePlan(ctx, plan, tasks)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist plan: %w", err)
	}

	return &primary.ImportPlanResponse{
		PlanID:    planID,
		TaskCount: len(tasks),
	}, nil
}

// GetPlan retrieves a plan with its tasks.
func (s *PlanServiceImpl) GetPlan(ctx context.Context, planID string) (*primary.Plan, error) {
	record, err := s.planStore.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.planStore.ListTasks(ctx, planID)
	if err != nil {
		return nil, err
	}

	plan := planToBoundary(record)
	for _, t := range tasks {
		plan.Tasks = append(plan.Tasks, taskToBoundary(t))
	}
	return plan, nil
}

// ListPlans lists all plans.
func (s *PlanServiceImpl) ListPlans(ctx context.Context) ([]*primary.Plan, error) {
	records, err := s.planStore.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*primary.Plan, len(records))
	for i, r := range records {
		plans[i] = planToBoundary(r)
	}
	return plans, nil
}

// ListTasks lists a plan's tasks in plan order.
func (s *PlanServiceImpl) ListTasks(ctx context.Context, planID string) ([]*primary.Task, error) {
	records, err := s.planStore.ListTasks(ctx, planID)
	if err != nil {
		return nil, err
	}

	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = taskToBoundary(r)
	}
	return tasks, nil
}

// GetTask retrieves one task with its criteria.
func (s *PlanServiceImpl) GetTask(ctx context.Context, planID, taskRef string) (*primary.Task, error) {
	record, err := s.planStore.GetTask(ctx, planID, taskRef)
	if err != nil {
		return nil, err
	}
	return taskToBoundary(record), nil
}

func planToBoundary(p *models.Plan) *primary.Plan {
	return &primary.Plan{
		ID:        p.ID,
		Title:     p.Title,
		Status:    p.Status,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

func taskToBoundary(t *models.Task) *primary.Task {
	out := &primary.Task{
		Ref:           t.ID,
		Ordinal:       t.Ordinal,
		Title:         t.Title,
		Description:   t.Description,
		ParallelGroup: t.ParallelGroup,
		Status:        t.Status,
		Attempts:      t.Attempts,
		CreatedAt:     formatTime(t.CreatedAt),
		CompletedAt:   formatTime(t.CompletedAt),
	}
	for _, c := range t.Criteria {
		out.Criteria = append(out.Criteria, primary.Criterion{
			Position:    c.Position,
			Description: c.Description,
			Check:       c.Check,
			Evidence:    c.Evidence,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Ensure PlanServiceImpl implements the interface
var _ primary.PlanService = (*PlanServiceImpl)(nil)

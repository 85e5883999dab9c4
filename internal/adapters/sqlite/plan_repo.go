// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	coreplan "github.com/example/foreman/internal/core/plan"
	coretask "github.com/example/foreman/internal/core/task"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/secondary"
)

// PlanRepository implements secondary.PlanStore with SQLite.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new SQLite plan repository.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// CreatePlan persists a plan and its ordered tasks in one transaction.
func (r *PlanRepository) CreatePlan(ctx context.Context, plan *models.Plan, tasks []*models.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &secondary.StorageUnavailableError{Op: "create plan", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO plans (id, title, status) VALUES (?, ?, ?)",
		plan.ID, plan.Title, models.PlanStatusActive,
	)
	if err != nil {
		return &secondary.StorageUnavailableError{Op: "create plan", Err: err}
	}

	for _, t := range tasks {
		var group sql.NullString
		if t.ParallelGroup != "" {
			group = sql.NullString{String: t.ParallelGroup, Valid: true}
		}
		var desc sql.NullString
		if t.Description != "" {
			desc = sql.NullString{String: t.Description, Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO tasks (plan_id, ordinal, ref, title, description, parallel_group, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
			plan.ID, t.Ordinal, coretask.Ref(t.Ordinal), t.Title, desc, group, coretask.InitialStatus(),
		)
		if err != nil {
			return &secondary.StorageUnavailableError{Op: "create task", Err: err}
		}

		for _, c := range t.Criteria {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO criteria (plan_id, task_ordinal, position, description, check_cmd, evidence) VALUES (?, ?, ?, ?, ?, ?)",
				plan.ID, t.Ordinal, c.Position, c.Description, c.Check, c.Evidence,
			)
			if err != nil {
				return &secondary.StorageUnavailableError{Op: "create criterion", Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &secondary.StorageUnavailableError{Op: "create plan", Err: err}
	}
	return nil
}

// GetPlan retrieves a plan by its ID.
func (r *PlanRepository) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, status, created_at, updated_at FROM plans WHERE id = ?",
		planID,
	)

	plan := &models.Plan{}
	err := row.Scan(&plan.ID, &plan.Title, &plan.Status, &plan.CreatedAt, &plan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return plan, nil
}

// ListPlans retrieves all plans, oldest first.
func (r *PlanRepository) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, status, created_at, updated_at FROM plans ORDER BY created_at ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		plan := &models.Plan{}
		if err := rows.Scan(&plan.ID, &plan.Title, &plan.Status, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

const taskSelectCols = "plan_id, ordinal, ref, title, description, parallel_group, status, attempts, created_at, updated_at, claimed_at, completed_at"

// scanTask scans a task row into a models.Task.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*models.Task, error) {
	var (
		desc        sql.NullString
		group       sql.NullString
		claimedAt   sql.NullTime
		completedAt sql.NullTime
	)

	t := &models.Task{}
	err := scanner.Scan(
		&t.PlanID, &t.Ordinal, &t.ID, &t.Title, &desc, &group,
		&t.Status, &t.Attempts, &t.CreatedAt, &t.UpdatedAt, &claimedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = desc.String
	t.ParallelGroup = group.String
	if claimedAt.Valid {
		t.ClaimedAt = claimedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = completedAt.Time
	}

	return t, nil
}

// ListTasks retrieves a plan's tasks in ordinal order with criteria
// attached. The loaded list is re-validated against the core plan
// invariants; a violation surfaces as *coreplan.CorruptPlanError since
// the store contents can no longer be trusted.
func (r *PlanRepository) ListTasks(ctx context.Context, planID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE plan_id = ? ORDER BY ordinal ASC",
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, &coreplan.CorruptPlanError{Reason: fmt.Sprintf("unreadable task row: %v", err)}
		}
		tasks = append(tasks, t)
	}

	for _, t := range tasks {
		criteria, err := r.listCriteria(ctx, planID, t.Ordinal)
		if err != nil {
			return nil, err
		}
		t.Criteria = criteria
	}

	if err := coreplan.Validate(tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// GetTask retrieves one task by its ref within a plan.
func (r *PlanRepository) GetTask(ctx context.Context, planID, taskRef string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE plan_id = ? AND ref = ?",
		planID, taskRef,
	)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s not found in plan %s", taskRef, planID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	criteria, err := r.listCriteria(ctx, planID, t.Ordinal)
	if err != nil {
		return nil, err
	}
	t.Criteria = criteria

	return t, nil
}

func (r *PlanRepository) listCriteria(ctx context.Context, planID string, ordinal int) ([]models.Criterion, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT position, description, check_cmd, evidence FROM criteria WHERE plan_id = ? AND task_ordinal = ? ORDER BY position ASC",
		planID, ordinal,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var criteria []models.Criterion
	for rows.Next() {
		var c models.Criterion
		var check, evidence sql.NullString
		if err := rows.Scan(&c.Position, &c.Description, &check, &evidence); err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		c.Check = check.String
		c.Evidence = evidence.String
		criteria = append(criteria, c)
	}

	return criteria, nil
}

// MarkStatus transitions a task's status after consulting the core
// transition guard. The guard runs inside the same statement sequence
// that performs the update, so a stale caller cannot push a terminal
// task back into flight.
func (r *PlanRepository) MarkStatus(ctx context.Context, planID, taskRef, newStatus string) error {
	var current string
	err := r.db.QueryRowContext(ctx,
		"SELECT status FROM tasks WHERE plan_id = ? AND ref = ?",
		planID, taskRef,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("task %s not found in plan %s", taskRef, planID)
	}
	if err != nil {
		return &secondary.StorageUnavailableError{Op: "mark status", Err: err}
	}

	if err := coretask.CanTransition(taskRef, current, newStatus); err != nil {
		return err
	}

	query := "UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP"
	if newStatus == models.TaskStatusInProgress {
		query += ", claimed_at = CURRENT_TIMESTAMP"
	}
	if newStatus == models.TaskStatusDone {
		query += ", completed_at = CURRENT_TIMESTAMP"
	}
	query += " WHERE plan_id = ? AND ref = ? AND status = ?"

	result, err := r.db.ExecContext(ctx, query, newStatus, planID, taskRef, current)
	if err != nil {
		return &secondary.StorageUnavailableError{Op: "mark status", Err: err}
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Status moved underneath us; re-run the guard against what is
		// there now to produce the precise error.
		var latest string
		if err := r.db.QueryRowContext(ctx,
			"SELECT status FROM tasks WHERE plan_id = ? AND ref = ?",
			planID, taskRef,
		).Scan(&latest); err != nil {
			return &secondary.StorageUnavailableError{Op: "mark status", Err: err}
		}
		if err := coretask.CanTransition(taskRef, latest, newStatus); err != nil {
			return err
		}
		return fmt.Errorf("concurrent update of task %s, transition %s -> %s not applied", taskRef, latest, newStatus)
	}

	return nil
}

// IncrementAttempts bumps the attempt counter and returns the new count.
func (r *PlanRepository) IncrementAttempts(ctx context.Context, planID, taskRef string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE plan_id = ? AND ref = ?",
		planID, taskRef,
	)
	if err != nil {
		return 0, &secondary.StorageUnavailableError{Op: "increment attempts", Err: err}
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return 0, fmt.Errorf("task %s not found in plan %s", taskRef, planID)
	}

	var attempts int
	err = r.db.QueryRowContext(ctx,
		"SELECT attempts FROM tasks WHERE plan_id = ? AND ref = ?",
		planID, taskRef,
	).Scan(&attempts)
	if err != nil {
		return 0, &secondary.StorageUnavailableError{Op: "increment attempts", Err: err}
	}

	return attempts, nil
}

// UpdatePlanStatus sets a plan's status.
func (r *PlanRepository) UpdatePlanStatus(ctx context.Context, planID, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE plans SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, planID,
	)
	if err != nil {
		return &secondary.StorageUnavailableError{Op: "update plan status", Err: err}
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("plan %s not found", planID)
	}

	return nil
}

// NextPlanID returns the next available plan ID.
func (r *PlanRepository) NextPlanID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM plans",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next plan ID: %w", err)
	}

	return fmt.Sprintf("PLAN-%03d", maxID+1), nil
}

// Ensure PlanRepository implements the interface
var _ secondary.PlanStore = (*PlanRepository)(nil)

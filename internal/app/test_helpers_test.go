package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/foreman/internal/core/dispatch"
	coretask "github.com/example/foreman/internal/core/task"
	"github.com/example/foreman/internal/core/verify"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockPlanStore implements secondary.PlanStore in memory.
type mockPlanStore struct {
	mu    sync.Mutex
	plans map[string]*models.Plan
	tasks map[string][]*models.Task // planID -> ordered tasks

	listErr error
}

func newMockPlanStore() *mockPlanStore {
	return &mockPlanStore{
		plans: make(map[string]*models.Plan),
		tasks: make(map[string][]*models.Task),
	}
}

func (m *mockPlanStore) CreatePlan(ctx context.Context, plan *models.Plan, tasks []*models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan
	for _, t := range tasks {
		t.PlanID = plan.ID
		if t.ID == "" {
			t.ID = coretask.Ref(t.Ordinal)
		}
		if t.Status == "" {
			t.Status = coretask.InitialStatus()
		}
	}
	m.tasks[plan.ID] = tasks
	return nil
}

func (m *mockPlanStore) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[planID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("plan %s not found", planID)
}

func (m *mockPlanStore) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Plan
	for _, p := range m.plans {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPlanStore) ListTasks(ctx context.Context, planID string) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]*models.Task(nil), m.tasks[planID]...), nil
}

func (m *mockPlanStore) GetTask(ctx context.Context, planID, taskRef string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks[planID] {
		if t.ID == taskRef {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %s not found in plan %s", taskRef, planID)
}

func (m *mockPlanStore) MarkStatus(ctx context.Context, planID, taskRef, newStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks[planID] {
		if t.ID != taskRef {
			continue
		}
		if err := coretask.CanTransition(taskRef, t.Status, newStatus); err != nil {
			return err
		}
		t.Status = newStatus
		return nil
	}
	return fmt.Errorf("task %s not found in plan %s", taskRef, planID)
}

func (m *mockPlanStore) IncrementAttempts(ctx context.Context, planID, taskRef string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks[planID] {
		if t.ID == taskRef {
			t.Attempts++
			return t.Attempts, nil
		}
	}
	return 0, fmt.Errorf("task %s not found in plan %s", taskRef, planID)
}

func (m *mockPlanStore) UpdatePlanStatus(ctx context.Context, planID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[planID]; ok {
		p.Status = status
		return nil
	}
	return fmt.Errorf("plan %s not found", planID)
}

func (m *mockPlanStore) NextPlanID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("PLAN-%03d", len(m.plans)+1), nil
}

var _ secondary.PlanStore = (*mockPlanStore)(nil)

// mockLedgerStore implements secondary.LedgerStore in memory.
type mockLedgerStore struct {
	mu        sync.Mutex
	entries   []models.LedgerEntry
	appendErr error
}

func (m *mockLedgerStore) Append(ctx context.Context, entry models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLedgerStore) Read(ctx context.Context, filter secondary.LedgerFilter) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range m.entries {
		if filter.PlanID != "" && e.PlanID != filter.PlanID {
			continue
		}
		if filter.TaskRef != "" && e.TaskRef != filter.TaskRef {
			continue
		}
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

var _ secondary.LedgerStore = (*mockLedgerStore)(nil)

// mockWorker implements secondary.WorkerProxy. By default it claims
// success on every delegation; delegateFn overrides per test.
type mockWorker struct {
	mu         sync.Mutex
	calls      []string                       // task refs in call order
	requests   map[string][]*dispatch.Request // per-task request history
	delegateFn func(req *dispatch.Request) (*secondary.WorkerReport, error)
}

func newMockWorker() *mockWorker {
	return &mockWorker{requests: make(map[string][]*dispatch.Request)}
}

func (m *mockWorker) Delegate(ctx context.Context, req *dispatch.Request) (*secondary.WorkerReport, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req.TaskRef)
	m.requests[req.TaskRef] = append(m.requests[req.TaskRef], req)
	fn := m.delegateFn
	m.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return &secondary.WorkerReport{TaskRef: req.TaskRef, Claimed: secondary.WorkerClaimSuccess}, nil
}

func (m *mockWorker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var _ secondary.WorkerProxy = (*mockWorker)(nil)

// mockVerifier implements Verifier with a per-task script: the nth call
// for a task returns the nth scripted result, repeating the last one.
type mockVerifier struct {
	mu      sync.Mutex
	calls   map[string]int
	scripts map[string][]*verify.Result
}

func newMockVerifier() *mockVerifier {
	return &mockVerifier{
		calls:   make(map[string]int),
		scripts: make(map[string][]*verify.Result),
	}
}

func (m *mockVerifier) script(taskRef string, results ...*verify.Result) {
	m.scripts[taskRef] = results
}

func (m *mockVerifier) Verify(ctx context.Context, task *models.Task, report *secondary.WorkerReport) *verify.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.calls[task.ID]
	m.calls[task.ID] = n + 1

	script := m.scripts[task.ID]
	if len(script) == 0 {
		return passResult(task)
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n]
}

var _ Verifier = (*mockVerifier)(nil)

// passResult builds an all-verified result for a task's criteria.
func passResult(task *models.Task) *verify.Result {
	r := &verify.Result{TaskRef: task.ID}
	for _, c := range task.Criteria {
		r.Outcomes = append(r.Outcomes, verify.CriterionOutcome{
			Position:    c.Position,
			Description: c.Description,
			Outcome:     verify.OutcomeVerified,
			Evidence:    "observed",
		})
	}
	return r
}

// failResult builds a result failing every criterion of a task.
func failResult(task *models.Task, evidence string) *verify.Result {
	r := &verify.Result{TaskRef: task.ID}
	for _, c := range task.Criteria {
		r.Outcomes = append(r.Outcomes, verify.CriterionOutcome{
			Position:    c.Position,
			Description: c.Description,
			Outcome:     verify.OutcomeFailed,
			Evidence:    evidence,
		})
	}
	return r
}

// mockChecker implements secondary.CriterionChecker with a scripted
// sequence of results per criterion description.
type mockChecker struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string][]secondary.CheckResult
}

func newMockChecker() *mockChecker {
	return &mockChecker{
		calls:   make(map[string]int),
		results: make(map[string][]secondary.CheckResult),
	}
}

func (m *mockChecker) script(criterion string, results ...secondary.CheckResult) {
	m.results[criterion] = results
}

func (m *mockChecker) Check(ctx context.Context, criterion models.Criterion) secondary.CheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.calls[criterion.Description]
	m.calls[criterion.Description] = n + 1

	script := m.results[criterion.Description]
	if len(script) == 0 {
		return secondary.CheckResult{Passed: true, Evidence: "ok"}
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n]
}

var _ secondary.CriterionChecker = (*mockChecker)(nil)

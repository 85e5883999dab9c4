package app

import (
	"context"
	"fmt"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/core/dispatch"
	coreplan "github.com/example/foreman/internal/core/plan"
	"github.com/example/foreman/internal/core/verify"
	"github.com/example/foreman/internal/ctxutil"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// OrchestratorServiceImpl drives the plan state machine: select ready
// tasks, delegate one task per request, verify independently, record,
// retry or block, advance.
//
// All plan store and ledger writes happen on the orchestrator's own
// goroutine, in the order it observes results. Parallel group members
// run concurrently but only delegate and verify; they report home over
// a channel and never touch shared state.
type OrchestratorServiceImpl struct {
	planStore secondary.PlanStore
	ledger    *LedgerServiceImpl
	worker    secondary.WorkerProxy
	verifier  Verifier
	policy    config.Policy
}

// NewOrchestratorService creates a new orchestrator with injected
// dependencies.
func NewOrchestratorService(
	planStore secondary.PlanStore,
	ledger *LedgerServiceImpl,
	worker secondary.WorkerProxy,
	verifier Verifier,
	policy config.Policy,
) *OrchestratorServiceImpl {
	return &OrchestratorServiceImpl{
		planStore: planStore,
		ledger:    ledger,
		worker:    worker,
		verifier:  verifier,
		policy:    policy,
	}
}

// taskEvent is one message from a task attempt loop to the
// orchestrator. Exactly one of the fields beyond TaskRef is set.
type taskEvent struct {
	taskRef string

	// attemptStarted asks the orchestrator to persist a new attempt.
	attemptStarted bool

	// record asks the orchestrator to append a ledger entry.
	record *primary.RecordRequest
	actor  string

	// outcome reports the task's terminal state for this run.
	outcome *taskOutcome

	// failed aborts the run: delegation infrastructure is broken.
	failed error
}

// taskOutcome is the final state a task reached in this run.
type taskOutcome struct {
	status     string // done or blocked
	attempts   int
	unresolved []string
}

// Run executes the orchestration loop for a plan until nextReady yields
// nothing, then reports the done/blocked partition. Structural errors
// (corrupt plan, invalid transition, multi-task request) abort the run;
// blocked tasks do not.
func (s *OrchestratorServiceImpl) Run(ctx context.Context, planID string) (*primary.RunSummary, error) {
	ctx = ctxutil.WithActor(ctx, config.ActorOrchestrator)

	if _, err := s.planStore.GetPlan(ctx, planID); err != nil {
		return nil, err
	}

	unresolvedByTask := map[string][]string{}

	for {
		tasks, err := s.planStore.ListTasks(ctx, planID)
		if err != nil {
			return nil, err
		}

		ready := coreplan.NextReady(tasks)
		if len(ready) == 0 {
			return s.summarize(ctx, planID, unresolvedByTask)
		}

		if err := s.runWave(ctx, planID, ready, unresolvedByTask); err != nil {
			return nil, err
		}
	}
}

// runWave dispatches one selection: a single task, or every member of a
// parallel group concurrently. It returns once all members are done or
// blocked (join semantics); a blocked member never aborts its siblings.
func (s *OrchestratorServiceImpl) runWave(ctx context.Context, planID string, ready []*models.Task, unresolvedByTask map[string][]string) error {
	// Build every request before dispatching anything: a structural
	// failure here means no worker is ever called.
	requests := make(map[string]*dispatch.Request, len(ready))
	for _, t := range ready {
		excerpt, err := s.ledger.RecentEntries(ctx, planID, t.ID, s.policy.LedgerWindow)
		if err != nil {
			return err
		}
		req, err := dispatch.NewRequest([]string{t.ID}, []*models.Task{t}, excerpt)
		if err != nil {
			return err
		}
		requests[t.ID] = req
	}

	for _, t := range ready {
		if err := s.planStore.MarkStatus(ctx, planID, t.ID, models.TaskStatusInProgress); err != nil {
			return err
		}
	}

	events := make(chan taskEvent)
	for _, t := range ready {
		go s.runAttempts(ctx, t, requests[t.ID], events)
	}

	// Single-writer loop: every store mutation for the wave happens
	// here, in the order events arrive. Per-task ordering holds because
	// each attempt loop sends sequentially.
	remaining := len(ready)
	var abort error
	for remaining > 0 {
		ev := <-events
		switch {
		case ev.failed != nil:
			remaining--
			if abort == nil {
				abort = ev.failed
			}

		case ev.attemptStarted:
			if _, err := s.planStore.IncrementAttempts(ctx, planID, ev.taskRef); err != nil && abort == nil {
				abort = err
			}

		case ev.record != nil:
			recCtx := ctxutil.WithActor(ctx, ev.actor)
			if err := s.ledger.Record(recCtx, *ev.record); err != nil && abort == nil {
				abort = err
			}

		case ev.outcome != nil:
			remaining--
			if err := s.planStore.MarkStatus(ctx, planID, ev.taskRef, ev.outcome.status); err != nil && abort == nil {
				abort = err
			}
			if ev.outcome.status == models.TaskStatusBlocked {
				unresolvedByTask[ev.taskRef] = ev.outcome.unresolved
			}
		}
	}

	return abort
}

// runAttempts is the per-task attempt loop: delegate, verify, decide,
// retry with the verifier's evidence until done or the attempt ceiling
// blocks the task. It performs no store writes; everything goes through
// the event channel.
func (s *OrchestratorServiceImpl) runAttempts(ctx context.Context, task *models.Task, req *dispatch.Request, events chan<- taskEvent) {
	attempts := task.Attempts

	for {
		attempts++
		events <- taskEvent{taskRef: task.ID, attemptStarted: true}

		report, err := s.worker.Delegate(ctxutil.WithActor(ctx, config.ActorWorker), req)
		if err != nil {
			events <- taskEvent{taskRef: task.ID, failed: fmt.Errorf("delegation of %s failed: %w", task.ID, err)}
			return
		}

		if report.Narrative != "" {
			events <- taskEvent{
				taskRef: task.ID,
				actor:   config.ActorWorker,
				record: &primary.RecordRequest{
					PlanID:  task.PlanID,
					TaskRef: task.ID,
					Kind:    models.LedgerKindDiscovery,
					Body:    report.Narrative,
					Data:    reportData(report, attempts),
				},
			}
		}

		// The report is advisory only: verification runs regardless of
		// what the worker claimed.
		result := s.verifier.Verify(ctx, task, report)
		decision := verify.Decide(result, attempts, s.policy.MaxAttempts)

		events <- taskEvent{
			taskRef: task.ID,
			actor:   config.ActorVerifier,
			record: &primary.RecordRequest{
				PlanID:  task.PlanID,
				TaskRef: task.ID,
				Kind:    verify.EntryKind(result),
				Body:    verificationBody(result, attempts),
				Data:    verificationData(result, attempts),
			},
		}

		switch decision {
		case verify.DecisionDone:
			events <- taskEvent{taskRef: task.ID, outcome: &taskOutcome{
				status:   models.TaskStatusDone,
				attempts: attempts,
			}}
			return

		case verify.DecisionBlocked:
			events <- taskEvent{
				taskRef: task.ID,
				actor:   config.ActorOrchestrator,
				record: &primary.RecordRequest{
					PlanID:  task.PlanID,
					TaskRef: task.ID,
					Kind:    models.LedgerKindDecision,
					Body:    fmt.Sprintf("blocked after %d attempts, left for manual intervention", attempts),
					Data:    map[string]any{"unresolved": verify.UnresolvedCriteria(result)},
				},
			}
			events <- taskEvent{taskRef: task.ID, outcome: &taskOutcome{
				status:     models.TaskStatusBlocked,
				attempts:   attempts,
				unresolved: verify.UnresolvedCriteria(result),
			}}
			return

		case verify.DecisionRetry:
			var failed []dispatch.FailedCriterion
			for _, o := range result.Failed() {
				evidence := o.Evidence
				if o.Unverifiable != "" {
					evidence = o.Unverifiable
				}
				failed = append(failed, dispatch.FailedCriterion{
					Position:    o.Position,
					Description: o.Description,
					Evidence:    evidence,
				})
			}
			req = dispatch.EnrichForRetry(req, failed)
		}
	}
}

// summarize builds the final report. Unresolved criteria come from this
// run's outcomes when available and from the ledger for tasks that were
// already blocked before the run started.
func (s *OrchestratorServiceImpl) summarize(ctx context.Context, planID string, unresolvedByTask map[string][]string) (*primary.RunSummary, error) {
	tasks, err := s.planStore.ListTasks(ctx, planID)
	if err != nil {
		return nil, err
	}

	partition := coreplan.Summarize(tasks)
	summary := &primary.RunSummary{
		PlanID:       planID,
		DoneCount:    len(partition.Done),
		BlockedCount: len(partition.Blocked),
		PendingCount: len(partition.Pending),
	}

	// Tasks the loop could not dispatch (a group member stranded
	// in_progress by an interrupted run parks its whole group) are part
	// of the report: a plan with leftovers is not a success.
	for _, t := range partition.Pending {
		summary.Parked = append(summary.Parked, primary.ParkedTask{
			TaskRef: t.ID,
			Title:   t.Title,
			Status:  t.Status,
		})
	}

	for _, t := range partition.Blocked {
		unresolved, ok := unresolvedByTask[t.ID]
		if !ok {
			unresolved, err = s.unresolvedFromLedger(ctx, planID, t.ID)
			if err != nil {
				return nil, err
			}
		}
		summary.Blocked = append(summary.Blocked, primary.BlockedTask{
			TaskRef:            t.ID,
			Title:              t.Title,
			Attempts:           t.Attempts,
			UnresolvedCriteria: unresolved,
		})
	}

	if partition.Clean() {
		if err := s.planStore.UpdatePlanStatus(ctx, planID, models.PlanStatusComplete); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// unresolvedFromLedger recovers a blocked task's unresolved criteria
// from its most recent blocking decision entry.
func (s *OrchestratorServiceImpl) unresolvedFromLedger(ctx context.Context, planID, taskRef string) ([]string, error) {
	entries, err := s.ledger.List(ctx, primary.LedgerFilters{
		PlanID:  planID,
		TaskRef: taskRef,
		Kind:    models.LedgerKindDecision,
	})
	if err != nil {
		return nil, err
	}

	for i := len(entries) - 1; i >= 0; i-- {
		raw, ok := entries[i].Data["unresolved"]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []any:
			// JSON round trip decodes string slices as []any.
			var out []string
			for _, item := range v {
				if str, ok := item.(string); ok {
					out = append(out, str)
				}
			}
			return out, nil
		}
	}
	return nil, nil
}

func verificationBody(result *verify.Result, attempts int) string {
	failed := result.Failed()
	if len(failed) == 0 {
		return fmt.Sprintf("attempt %d: all %d criteria verified", attempts, len(result.Outcomes))
	}
	return fmt.Sprintf("attempt %d: %d of %d criteria failed verification", attempts, len(failed), len(result.Outcomes))
}

func verificationData(result *verify.Result, attempts int) map[string]any {
	outcomes := make([]map[string]any, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		entry := map[string]any{
			"position":  o.Position,
			"criterion": o.Description,
			"outcome":   o.Outcome,
			"evidence":  o.Evidence,
		}
		if o.Unverifiable != "" {
			entry["unverifiable"] = o.Unverifiable
		}
		outcomes = append(outcomes, entry)
	}
	return map[string]any{
		"attempt":  attempts,
		"outcomes": outcomes,
	}
}

func reportData(report *secondary.WorkerReport, attempts int) map[string]any {
	data := map[string]any{
		"attempt": attempts,
		"claimed": report.Claimed,
	}
	if len(report.SideEffects) > 0 {
		data["side_effects"] = report.SideEffects
	}
	if report.TimedOut {
		data["timed_out"] = true
	}
	return data
}

// Ensure OrchestratorServiceImpl implements the interface
var _ primary.OrchestratorService = (*OrchestratorServiceImpl)(nil)

package app

import (
	"context"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/core/verify"
	"github.com/example/foreman/internal/ctxutil"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/secondary"
)

// Verifier is the orchestrator's view of independent re-validation.
// Only a verify.Result, never a worker report, can justify marking a
// task done.
type Verifier interface {
	Verify(ctx context.Context, task *models.Task, report *secondary.WorkerReport) *verify.Result
}

// VerifierService re-checks every acceptance criterion of a completed
// task without trusting the worker's self-report. The report parameter
// exists only so evidence claims can be cross-referenced in the
// recorded outcome; it never influences pass or fail.
type VerifierService struct {
	checker secondary.CriterionChecker
	policy  config.Policy
}

// NewVerifierService creates a new VerifierService.
func NewVerifierService(checker secondary.CriterionChecker, policy config.Policy) *VerifierService {
	return &VerifierService{checker: checker, policy: policy}
}

// Verify runs the independent check behind each criterion. A check that
// keeps failing is re-run up to the policy's verify retries before
// being recorded, so one flaky pass does not condemn a task; for a
// fixed system state the recorded outcomes are stable across calls.
func (s *VerifierService) Verify(ctx context.Context, task *models.Task, report *secondary.WorkerReport) *verify.Result {
	ctx = ctxutil.WithActor(ctx, config.ActorVerifier)

	result := &verify.Result{TaskRef: task.ID}
	for _, criterion := range task.Criteria {
		result.Outcomes = append(result.Outcomes, s.checkOne(ctx, criterion))
	}
	return result
}

func (s *VerifierService) checkOne(ctx context.Context, criterion models.Criterion) verify.CriterionOutcome {
	outcome := verify.CriterionOutcome{
		Position:    criterion.Position,
		Description: criterion.Description,
		Outcome:     verify.OutcomeFailed,
	}

	var last secondary.CheckResult
	for attempt := 0; attempt <= s.policy.VerifyRetries; attempt++ {
		last = s.checker.Check(ctx, criterion)
		if last.Passed {
			outcome.Outcome = verify.OutcomeVerified
			break
		}
		if last.Unverifiable != "" {
			// Re-running cannot make an unexecutable check executable.
			break
		}
	}

	outcome.Evidence = last.Evidence
	outcome.Unverifiable = last.Unverifiable
	return outcome
}

// Ensure VerifierService implements the interface
var _ Verifier = (*VerifierService)(nil)

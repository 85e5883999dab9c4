// Package verify contains the pure decision logic applied to
// verification outcomes. The verifier service gathers per-criterion
// evidence; this package decides what the evidence means for the task.
package verify

import "github.com/example/foreman/internal/models"

// Outcome values for a single criterion.
const (
	OutcomeVerified = "verified"
	OutcomeFailed   = "failed"
)

// CriterionOutcome is the verifier's independent judgement of one
// acceptance criterion. When the check could not be executed at all,
// Unverifiable carries the reason and the outcome is failed - absence
// of evidence is never a pass.
type CriterionOutcome struct {
	Position     int    `json:"position"`
	Description  string `json:"description"`
	Outcome      string `json:"outcome"`
	Evidence     string `json:"evidence"`
	Unverifiable string `json:"unverifiable,omitempty"`
}

// Result is the verifier's full judgement of a task attempt. Only a
// Result, never a worker's self-report, can justify a done transition.
type Result struct {
	TaskRef  string             `json:"task_ref"`
	Outcomes []CriterionOutcome `json:"outcomes"`
}

// AllVerified reports whether every criterion outcome passed. A single
// failed criterion fails the whole task regardless of others passing.
func (r *Result) AllVerified() bool {
	if len(r.Outcomes) == 0 {
		return false
	}
	for _, o := range r.Outcomes {
		if o.Outcome != OutcomeVerified {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that did not verify.
func (r *Result) Failed() []CriterionOutcome {
	var failed []CriterionOutcome
	for _, o := range r.Outcomes {
		if o.Outcome != OutcomeVerified {
			failed = append(failed, o)
		}
	}
	return failed
}

// Decision is the orchestrator's next move for a task after one
// verification pass.
type Decision string

const (
	DecisionDone    Decision = "done"
	DecisionRetry   Decision = "retry"
	DecisionBlocked Decision = "blocked"
)

// Decide maps a verification result and the attempt count onto the next
// transition. attempts is the number of delegation attempts already
// consumed, including the one just verified.
func Decide(result *Result, attempts, maxAttempts int) Decision {
	if result.AllVerified() {
		return DecisionDone
	}
	if attempts >= maxAttempts {
		return DecisionBlocked
	}
	return DecisionRetry
}

// UnresolvedCriteria lists the descriptions of criteria still failing,
// verbatim, for the final run summary of a blocked task.
func UnresolvedCriteria(result *Result) []string {
	var out []string
	for _, o := range result.Failed() {
		out = append(out, o.Description)
	}
	return out
}

// EntryKind returns the ledger kind a verification pass should be
// recorded under: a failed pass is a failed approach, a clean pass is a
// verification result.
func EntryKind(result *Result) string {
	if result.AllVerified() {
		return models.LedgerKindVerification
	}
	return models.LedgerKindFailedApproach
}

package primary

import "context"

// OrchestratorService drives a plan to completion: selects ready tasks,
// delegates them one per request, verifies every claim independently,
// and records outcomes.
type OrchestratorService interface {
	// Run executes the orchestration loop for a plan until no
	// dispatchable task remains, then returns the final partition.
	// Structural errors (corrupt plan, invalid transition, multi-task
	// request) abort the run; a blocked task does not.
	Run(ctx context.Context, planID string) (*RunSummary, error)
}

// RunSummary is the final report of an orchestration run. It is never a
// bare boolean: blocked tasks surface with their unresolved criteria
// verbatim, and tasks the loop could not dispatch surface as parked.
type RunSummary struct {
	PlanID       string
	DoneCount    int
	BlockedCount int
	PendingCount int
	Blocked      []BlockedTask
	Parked       []ParkedTask
}

// BlockedTask describes one task left for manual intervention.
type BlockedTask struct {
	TaskRef            string
	Title              string
	Attempts           int
	UnresolvedCriteria []string
}

// ParkedTask describes a task the run ended without dispatching: still
// pending behind undispatchable work, or stranded in_progress by an
// interrupted run.
type ParkedTask struct {
	TaskRef string
	Title   string
	Status  string
}

// Clean reports whether the run ended with every task done. A parked
// task fails the run just like a blocked one: unresolved work is never
// reported as success.
func (s *RunSummary) Clean() bool {
	return s.BlockedCount == 0 && s.PendingCount == 0
}

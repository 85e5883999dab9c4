// Package dispatch contains the pure logic for building delegation
// requests. The single-task invariant lives here: a request that would
// cover more than one task is rejected before it can reach a worker.
package dispatch

import (
	"fmt"

	"github.com/example/foreman/internal/models"
)

// MultiTaskRequestError reports an attempt to build a delegation request
// covering more than one task. Bundling tasks defeats retry and blame
// isolation, so this is treated as an orchestrator bug and halts the run.
type MultiTaskRequestError struct {
	TaskRefs []string
}

func (e *MultiTaskRequestError) Error() string {
	return fmt.Sprintf("delegation request references %d tasks %v, exactly one allowed", len(e.TaskRefs), e.TaskRefs)
}

// Request is the ephemeral payload handed to a worker for one task.
// It is never persisted; the ledger excerpt bounds how much history
// travels with it.
type Request struct {
	PlanID        string               `json:"plan_id"`
	TaskRef       string               `json:"task_ref"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Criteria      []models.Criterion   `json:"criteria"`
	Attempt       int                  `json:"attempt"`
	LedgerExcerpt []models.LedgerEntry `json:"ledger_excerpt,omitempty"`
	RetryContext  []FailedCriterion    `json:"retry_context,omitempty"`
}

// FailedCriterion carries a previously failed criterion and the
// verifier's evidence into a retried delegation, so the retry does not
// repeat the same failure blind.
type FailedCriterion struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
}

// NewRequest builds a delegation request for exactly one task. Passing
// more (or fewer) than one task returns *MultiTaskRequestError; the
// request must be rejected before any worker call occurs.
func NewRequest(taskRefs []string, tasks []*models.Task, excerpt []models.LedgerEntry) (*Request, error) {
	if len(taskRefs) != 1 || len(tasks) != 1 {
		refs := taskRefs
		if len(refs) == 0 {
			for _, t := range tasks {
				refs = append(refs, t.ID)
			}
		}
		return nil, &MultiTaskRequestError{TaskRefs: refs}
	}

	t := tasks[0]
	if taskRefs[0] != t.ID {
		return nil, &MultiTaskRequestError{TaskRefs: []string{taskRefs[0], t.ID}}
	}

	return &Request{
		PlanID:        t.PlanID,
		TaskRef:       t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Criteria:      t.Criteria,
		Attempt:       t.Attempts + 1,
		LedgerExcerpt: excerpt,
	}, nil
}

// EnrichForRetry returns a copy of the request annotated with the failed
// criteria of the previous attempt and an incremented attempt counter.
func EnrichForRetry(req *Request, failed []FailedCriterion) *Request {
	next := *req
	next.Attempt = req.Attempt + 1
	next.RetryContext = failed
	return &next
}

package secondary

import (
	"context"

	"github.com/example/foreman/internal/core/dispatch"
)

// WorkerProxy is the boundary through which a single task is delegated
// to an executing agent. The orchestrator does not know how the worker
// does its job, only this contract:
//
//   - Exactly one task per call (enforced by the caller via
//     dispatch.NewRequest before the proxy is ever reached).
//   - The returned report is advisory only; it can never transition a
//     task to done by itself.
//   - Delegations must be idempotent-safe to retry: a retried attempt
//     is expected to detect partially applied work and resume or repair
//     rather than double-apply.
type WorkerProxy interface {
	Delegate(ctx context.Context, req *dispatch.Request) (*WorkerReport, error)
}

// Worker-claimed status values.
const (
	WorkerClaimSuccess = "success"
	WorkerClaimFailure = "failure"
	WorkerClaimBlocked = "blocked"
)

// WorkerReport is the worker's self-report for one delegation. Every
// field in it is a claim, not a fact; the verifier re-checks all of it.
type WorkerReport struct {
	TaskRef     string          `json:"task_ref"`
	Claimed     string          `json:"claimed"`
	SideEffects []string        `json:"side_effects,omitempty"`
	Evidence    []ClaimEvidence `json:"evidence,omitempty"`
	Narrative   string          `json:"narrative,omitempty"`
	TimedOut    bool            `json:"timed_out,omitempty"`
}

// ClaimEvidence is the worker's self-reported evidence for one
// acceptance criterion.
type ClaimEvidence struct {
	Position int    `json:"position"`
	Claim    string `json:"claim"`
}

package models

import "time"

// LedgerEntry is one immutable record in the append-only run ledger.
// Entries are never edited or removed after append; a run's history is
// reconstructed purely by replaying them in order.
type LedgerEntry struct {
	Time    time.Time      `json:"time"`
	PlanID  string         `json:"plan_id"`
	TaskRef string         `json:"task_ref"`
	Kind    string         `json:"kind"`
	Actor   string         `json:"actor,omitempty"`
	Body    string         `json:"body"`
	Data    map[string]any `json:"data,omitempty"`
}

// Ledger entry kinds.
const (
	LedgerKindDecision       = "decision"
	LedgerKindFailedApproach = "failed_approach"
	LedgerKindDiscovery      = "discovery"
	LedgerKindAdvisory       = "advisory"
	LedgerKindVerification   = "verification_result"
	LedgerKindLearning       = "learning"
)

// ValidLedgerKind reports whether kind is one of the known entry kinds.
func ValidLedgerKind(kind string) bool {
	switch kind {
	case LedgerKindDecision, LedgerKindFailedApproach, LedgerKindDiscovery,
		LedgerKindAdvisory, LedgerKindVerification, LedgerKindLearning:
		return true
	}
	return false
}

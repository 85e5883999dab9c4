package primary

import "context"

// LedgerService defines the primary port for ledger operations.
type LedgerService interface {
	// Record appends one entry to the ledger.
	Record(ctx context.Context, req RecordRequest) error

	// List returns entries matching the filters, oldest first.
	List(ctx context.Context, filters LedgerFilters) ([]*LedgerEntry, error)

	// RecentFor returns the most recent entries relevant to a task,
	// oldest-first within the window: the task's own history plus
	// cross-task advisories, discoveries, and learnings.
	RecentFor(ctx context.Context, planID, taskRef string, window int) ([]*LedgerEntry, error)
}

// RecordRequest contains parameters for appending a ledger entry.
type RecordRequest struct {
	PlanID  string
	TaskRef string
	Kind    string
	Body    string
	Data    map[string]any
}

// LedgerFilters contains filter options for listing ledger entries.
type LedgerFilters struct {
	PlanID  string
	TaskRef string
	Kind    string
}

// LedgerEntry represents a ledger entry at the port boundary.
type LedgerEntry struct {
	Time    string
	PlanID  string
	TaskRef string
	Kind    string
	Actor   string
	Body    string
	Data    map[string]any
}

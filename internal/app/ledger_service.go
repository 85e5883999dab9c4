package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/ctxutil"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	store  secondary.LedgerStore
	policy config.Policy
	now    func() time.Time
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(store secondary.LedgerStore, policy config.Policy) *LedgerServiceImpl {
	return &LedgerServiceImpl{store: store, policy: policy, now: time.Now}
}

// Record appends one entry. The acting component is taken from context;
// storage failures are retried with backoff before becoming fatal.
func (s *LedgerServiceImpl) Record(ctx context.Context, req primary.RecordRequest) error {
	if !models.ValidLedgerKind(req.Kind) {
		return fmt.Errorf("unknown ledger kind %q", req.Kind)
	}

	entry := models.LedgerEntry{
		Time:    s.now().UTC(),
		PlanID:  req.PlanID,
		TaskRef: req.TaskRef,
		Kind:    req.Kind,
		Actor:   ctxutil.ActorFromContext(ctx),
		Body:    req.Body,
		Data:    req.Data,
	}

	return withStorageRetry(ctx, s.policy.StorageRetries, func() error {
		return s.store.Append(ctx, entry)
	})
}

// List returns entries matching the filters, oldest first.
func (s *LedgerServiceImpl) List(ctx context.Context, filters primary.LedgerFilters) ([]*primary.LedgerEntry, error) {
	entries, err := s.store.Read(ctx, secondary.LedgerFilter{
		PlanID:  filters.PlanID,
		TaskRef: filters.TaskRef,
		Kind:    filters.Kind,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*primary.LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = entryToBoundary(e)
	}
	return out, nil
}

// RecentFor returns the window of entries relevant to a task: its own
// history plus cross-task advisories, discoveries, and learnings.
// The window bounds how much history travels into a delegation, so
// context stays manageable as the ledger grows.
func (s *LedgerServiceImpl) RecentFor(ctx context.Context, planID, taskRef string, window int) ([]*primary.LedgerEntry, error) {
	relevant, err := s.RecentEntries(ctx, planID, taskRef, window)
	if err != nil {
		return nil, err
	}

	out := make([]*primary.LedgerEntry, len(relevant))
	for i, e := range relevant {
		out[i] = entryToBoundary(e)
	}
	return out, nil
}

// RecentEntries is RecentFor returning domain entries, for callers
// inside the application layer.
func (s *LedgerServiceImpl) RecentEntries(ctx context.Context, planID, taskRef string, window int) ([]models.LedgerEntry, error) {
	if window <= 0 {
		window = s.policy.LedgerWindow
	}

	entries, err := s.store.Read(ctx, secondary.LedgerFilter{PlanID: planID})
	if err != nil {
		return nil, err
	}

	var relevant []models.LedgerEntry
	for _, e := range entries {
		if relevantTo(e, taskRef) {
			relevant = append(relevant, e)
		}
	}

	if len(relevant) > window {
		relevant = relevant[len(relevant)-window:]
	}
	return relevant, nil
}

func relevantTo(e models.LedgerEntry, taskRef string) bool {
	if e.TaskRef == taskRef {
		return true
	}
	switch e.Kind {
	case models.LedgerKindAdvisory, models.LedgerKindDiscovery, models.LedgerKindLearning:
		return true
	}
	return false
}

func entryToBoundary(e models.LedgerEntry) *primary.LedgerEntry {
	return &primary.LedgerEntry{
		Time:    e.Time.Format(time.RFC3339Nano),
		PlanID:  e.PlanID,
		TaskRef: e.TaskRef,
		Kind:    e.Kind,
		Actor:   e.Actor,
		Body:    e.Body,
		Data:    e.Data,
	}
}

// Ensure LedgerServiceImpl implements the interface
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)

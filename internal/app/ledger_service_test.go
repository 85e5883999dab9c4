package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/ctxutil"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

func newLedgerService(store *mockLedgerStore) *LedgerServiceImpl {
	svc := NewLedgerService(store, config.DefaultConfig().Policy)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return svc
}

func recordEntry(t *testing.T, svc *LedgerServiceImpl, actor, taskRef, kind, body string) {
	t.Helper()
	ctx := ctxutil.WithActor(context.Background(), actor)
	err := svc.Record(ctx, primary.RecordRequest{
		PlanID:  "PLAN-001",
		TaskRef: taskRef,
		Kind:    kind,
		Body:    body,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
}

func TestRecordStampsActorFromContext(t *testing.T) {
	store := &mockLedgerStore{}
	svc := newLedgerService(store)

	recordEntry(t, svc, config.ActorVerifier, "TASK-001", models.LedgerKindVerification, "all criteria verified")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.Actor != config.ActorVerifier {
		t.Errorf("expected actor %s, got %s", config.ActorVerifier, entry.Actor)
	}
	if entry.Time.IsZero() {
		t.Error("entry time not stamped")
	}
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	svc := newLedgerService(&mockLedgerStore{})

	err := svc.Record(context.Background(), primary.RecordRequest{
		PlanID:  "PLAN-001",
		TaskRef: "TASK-001",
		Kind:    "gossip",
		Body:    "x",
	})
	if err == nil {
		t.Fatal("expected unknown kind to be rejected")
	}
}

func TestRecordRetriesStorageUnavailable(t *testing.T) {
	store := &mockLedgerStore{appendErr: &secondary.StorageUnavailableError{Op: "append", Err: context.DeadlineExceeded}}
	svc := newLedgerService(store)

	err := svc.Record(context.Background(), primary.RecordRequest{
		PlanID:  "PLAN-001",
		TaskRef: "TASK-001",
		Kind:    models.LedgerKindDecision,
		Body:    "x",
	})
	if err == nil {
		t.Fatal("expected record to fail once retries are exhausted")
	}

	var unavailable *secondary.StorageUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected StorageUnavailableError, got %v", err)
	}
}

func TestRecentEntriesFiltersByRelevance(t *testing.T) {
	store := &mockLedgerStore{}
	svc := newLedgerService(store)

	recordEntry(t, svc, config.ActorVerifier, "TASK-001", models.LedgerKindFailedApproach, "own failure")
	recordEntry(t, svc, config.ActorVerifier, "TASK-002", models.LedgerKindFailedApproach, "someone else's failure")
	recordEntry(t, svc, config.ActorWorker, "TASK-002", models.LedgerKindDiscovery, "shared discovery")
	recordEntry(t, svc, config.ActorOrchestrator, "", models.LedgerKindAdvisory, "plan-wide advisory")

	entries, err := svc.RecentEntries(context.Background(), "PLAN-001", "TASK-001", 20)
	if err != nil {
		t.Fatalf("RecentEntries failed: %v", err)
	}

	// Own history plus cross-task knowledge; another task's failures are
	// not TASK-001's business.
	bodies := make([]string, len(entries))
	for i, e := range entries {
		bodies[i] = e.Body
	}
	want := []string{"own failure", "shared discovery", "plan-wide advisory"}
	if len(bodies) != len(want) {
		t.Fatalf("expected %v, got %v", want, bodies)
	}
	for i := range want {
		if bodies[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], bodies[i])
		}
	}
}

func TestRecentEntriesWindowKeepsNewest(t *testing.T) {
	store := &mockLedgerStore{}
	svc := newLedgerService(store)

	for i := 0; i < 10; i++ {
		recordEntry(t, svc, config.ActorWorker, "TASK-001", models.LedgerKindDiscovery, string(rune('a'+i)))
	}

	entries, err := svc.RecentEntries(context.Background(), "PLAN-001", "TASK-001", 3)
	if err != nil {
		t.Fatalf("RecentEntries failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected window of 3, got %d", len(entries))
	}
	// Newest three, oldest first.
	want := []string{"h", "i", "j"}
	for i := range want {
		if entries[i].Body != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], entries[i].Body)
		}
	}
}

func TestListReturnsBoundaryEntries(t *testing.T) {
	store := &mockLedgerStore{}
	svc := newLedgerService(store)

	recordEntry(t, svc, config.ActorVerifier, "TASK-001", models.LedgerKindVerification, "verified")
	recordEntry(t, svc, config.ActorVerifier, "TASK-002", models.LedgerKindVerification, "also verified")

	entries, err := svc.List(context.Background(), primary.LedgerFilters{PlanID: "PLAN-001", TaskRef: "TASK-002"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Body != "also verified" {
		t.Errorf("wrong entry: %+v", entries[0])
	}
	if _, err := time.Parse(time.RFC3339Nano, entries[0].Time); err != nil {
		t.Errorf("boundary time not RFC3339: %q", entries[0].Time)
	}
}

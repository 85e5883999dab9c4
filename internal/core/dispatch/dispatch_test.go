package dispatch

import (
	"errors"
	"testing"

	"github.com/example/foreman/internal/models"
)

func testTask(ref string) *models.Task {
	return &models.Task{
		ID:          ref,
		PlanID:      "PLAN-001",
		Ordinal:     1,
		Title:       "do the thing",
		Description: "in detail",
		Attempts:    0,
		Criteria:    []models.Criterion{{Position: 1, Description: "it works", Check: "true"}},
	}
}

func TestNewRequestSingleTask(t *testing.T) {
	req, err := NewRequest([]string{"TASK-001"}, []*models.Task{testTask("TASK-001")}, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.TaskRef != "TASK-001" {
		t.Errorf("TaskRef = %q, want TASK-001", req.TaskRef)
	}
	if req.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1 for first delegation", req.Attempt)
	}
	if len(req.Criteria) != 1 {
		t.Errorf("criteria not carried into request")
	}
}

func TestNewRequestRejectsMultipleTasks(t *testing.T) {
	refs := []string{"TASK-007", "TASK-008"}
	tasks := []*models.Task{testTask("TASK-007"), testTask("TASK-008")}

	_, err := NewRequest(refs, tasks, nil)
	var multi *MultiTaskRequestError
	if !errors.As(err, &multi) {
		t.Fatalf("NewRequest = %v, want MultiTaskRequestError", err)
	}
	if len(multi.TaskRefs) != 2 {
		t.Errorf("error refs = %v, want both offending tasks", multi.TaskRefs)
	}
}

func TestNewRequestRejectsEmpty(t *testing.T) {
	_, err := NewRequest(nil, nil, nil)
	var multi *MultiTaskRequestError
	if !errors.As(err, &multi) {
		t.Fatalf("NewRequest = %v, want MultiTaskRequestError", err)
	}
}

func TestNewRequestRejectsMismatchedRef(t *testing.T) {
	_, err := NewRequest([]string{"TASK-002"}, []*models.Task{testTask("TASK-001")}, nil)
	var multi *MultiTaskRequestError
	if !errors.As(err, &multi) {
		t.Fatalf("NewRequest = %v, want MultiTaskRequestError on ref mismatch", err)
	}
}

func TestEnrichForRetry(t *testing.T) {
	req, err := NewRequest([]string{"TASK-001"}, []*models.Task{testTask("TASK-001")}, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	failed := []FailedCriterion{{Position: 1, Description: "it works", Evidence: "exit status 1"}}
	next := EnrichForRetry(req, failed)

	if next.Attempt != req.Attempt+1 {
		t.Errorf("Attempt = %d, want %d", next.Attempt, req.Attempt+1)
	}
	if len(next.RetryContext) != 1 || next.RetryContext[0].Evidence != "exit status 1" {
		t.Errorf("retry context not attached: %+v", next.RetryContext)
	}
	if len(req.RetryContext) != 0 {
		t.Error("EnrichForRetry mutated the original request")
	}
}

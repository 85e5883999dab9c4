package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/foreman/internal/models"
)

func mkTask(ordinal int, status, group string) *models.Task {
	return &models.Task{
		Ordinal:       ordinal,
		Title:         "task",
		Status:        status,
		ParallelGroup: group,
		Criteria:      []models.Criterion{{Position: 1, Description: "check passes", Check: "true"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []*models.Task
		wantErr string
	}{
		{
			name:  "valid sequential plan",
			tasks: []*models.Task{mkTask(1, "pending", ""), mkTask(2, "pending", "")},
		},
		{
			name:  "valid parallel group",
			tasks: []*models.Task{mkTask(1, "pending", "A"), mkTask(2, "pending", "A")},
		},
		{
			name:    "empty plan",
			tasks:   nil,
			wantErr: "no tasks",
		},
		{
			name:    "non-contiguous ordinals",
			tasks:   []*models.Task{mkTask(1, "pending", ""), mkTask(3, "pending", "")},
			wantErr: "ordinal",
		},
		{
			name:    "singleton parallel group",
			tasks:   []*models.Task{mkTask(1, "pending", "A"), mkTask(2, "pending", "")},
			wantErr: "only one member",
		},
		{
			name: "task without criteria",
			tasks: []*models.Task{
				{Ordinal: 1, Title: "task", Status: "pending"},
			},
			wantErr: "no acceptance criteria",
		},
		{
			name: "task without title",
			tasks: []*models.Task{
				{Ordinal: 1, Criteria: []models.Criterion{{Description: "c", Check: "true"}}},
			},
			wantErr: "no title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tasks)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var corrupt *CorruptPlanError
			if !errors.As(err, &corrupt) {
				t.Fatalf("Validate() = %v, want CorruptPlanError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNextReadySequential(t *testing.T) {
	tasks := []*models.Task{
		mkTask(1, models.TaskStatusDone, ""),
		mkTask(2, models.TaskStatusPending, ""),
		mkTask(3, models.TaskStatusPending, ""),
	}

	ready := NextReady(tasks)
	if len(ready) != 1 {
		t.Fatalf("NextReady returned %d tasks, want 1", len(ready))
	}
	if ready[0].Ordinal != 2 {
		t.Errorf("selected ordinal %d, want 2 (plan order)", ready[0].Ordinal)
	}
}

func TestNextReadyEmptyWhenAllTerminal(t *testing.T) {
	tasks := []*models.Task{
		mkTask(1, models.TaskStatusDone, ""),
		mkTask(2, models.TaskStatusBlocked, ""),
	}
	if ready := NextReady(tasks); ready != nil {
		t.Errorf("NextReady = %v, want nil", ready)
	}
}

func TestNextReadyReturnsWholeGroup(t *testing.T) {
	tasks := []*models.Task{
		mkTask(1, models.TaskStatusDone, ""),
		mkTask(2, models.TaskStatusPending, "A"),
		mkTask(3, models.TaskStatusPending, "A"),
		mkTask(4, models.TaskStatusPending, ""),
	}

	ready := NextReady(tasks)
	if len(ready) != 2 {
		t.Fatalf("NextReady returned %d tasks, want full group of 2", len(ready))
	}
	if ready[0].Ordinal != 2 || ready[1].Ordinal != 3 {
		t.Errorf("group members = %d,%d, want 2,3", ready[0].Ordinal, ready[1].Ordinal)
	}
}

func TestNextReadyDoesNotSplitInFlightGroup(t *testing.T) {
	tasks := []*models.Task{
		mkTask(1, models.TaskStatusInProgress, "A"),
		mkTask(2, models.TaskStatusPending, "A"),
	}
	if ready := NextReady(tasks); ready != nil {
		t.Errorf("NextReady = %v, want nil while group member is in_progress", ready)
	}
}

func TestNextReadyResumesPartiallyTerminalGroup(t *testing.T) {
	// A run that stopped mid-group resumes with the surviving pending
	// members; terminal members drop out.
	tasks := []*models.Task{
		mkTask(1, models.TaskStatusDone, "A"),
		mkTask(2, models.TaskStatusPending, "A"),
	}
	ready := NextReady(tasks)
	if len(ready) != 1 || ready[0].Ordinal != 2 {
		t.Fatalf("NextReady = %v, want just ordinal 2", ready)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []*models.Task{
		mkTask(1, models.TaskStatusDone, ""),
		mkTask(2, models.TaskStatusBlocked, ""),
		mkTask(3, models.TaskStatusPending, ""),
	}

	s := Summarize(tasks)
	if len(s.Done) != 1 || len(s.Blocked) != 1 || len(s.Pending) != 1 {
		t.Fatalf("Summarize partition = %d/%d/%d, want 1/1/1", len(s.Done), len(s.Blocked), len(s.Pending))
	}
	if s.Clean() {
		t.Error("summary with blocked tasks must not be clean")
	}

	all := Summarize([]*models.Task{mkTask(1, models.TaskStatusDone, "")})
	if !all.Clean() {
		t.Error("all-done summary should be clean")
	}
}

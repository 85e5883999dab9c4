package planfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreplan "github.com/example/foreman/internal/core/plan"
)

const validDoc = `
title: Ship the widget
tasks:
  - title: Build the parser
    description: Tokenize and parse widget specs
    criteria:
      - description: unit tests pass
        check: go test ./parser/...
        evidence: command output
      - description: fuzz corpus survives
        check: go test -run Fuzz ./parser/...
  - title: Wire parser into CLI
    group: A
    criteria:
      - description: end to end run succeeds
        check: ./widget check testdata/ok.widget
  - title: Wire printer into CLI
    group: A
    criteria:
      - description: printed output matches golden file
        check: diff <(./widget print testdata/ok.widget) testdata/ok.golden
`

func TestParseValidDocument(t *testing.T) {
	plan, tasks, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if plan.Title != "Ship the widget" {
		t.Errorf("plan title = %q", plan.Title)
	}
	if len(tasks) != 3 {
		t.Fatalf("parsed %d tasks, want 3", len(tasks))
	}
	if tasks[0].Ordinal != 1 || tasks[2].Ordinal != 3 {
		t.Error("ordinals not assigned in document order")
	}
	if len(tasks[0].Criteria) != 2 {
		t.Errorf("task 1 criteria = %d, want 2", len(tasks[0].Criteria))
	}
	if tasks[0].Criteria[1].Position != 2 {
		t.Error("criterion positions not assigned in order")
	}
	if tasks[1].ParallelGroup != "A" || tasks[2].ParallelGroup != "A" {
		t.Error("parallel group not parsed")
	}
}

func TestParseCorruptDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "title: [unterminated"},
		{"unknown field", "title: x\nwork_items: []\n"},
		{"missing title", "tasks:\n  - title: t\n    criteria:\n      - description: c\n"},
		{"no tasks", "title: x\ntasks: []\n"},
		{"task without criteria", "title: x\ntasks:\n  - title: t\n"},
		{"singleton group", "title: x\ntasks:\n  - title: a\n    group: G\n    criteria:\n      - description: c\n  - title: b\n    criteria:\n      - description: c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.doc))
			var corrupt *coreplan.CorruptPlanError
			if !errors.As(err, &corrupt) {
				t.Fatalf("Parse = %v, want CorruptPlanError", err)
			}
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(validDoc), 0644); err != nil {
		t.Fatal(err)
	}

	_, tasks, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("loaded %d tasks, want 3", len(tasks))
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

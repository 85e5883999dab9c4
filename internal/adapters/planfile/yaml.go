// Package planfile loads plan documents from disk. A plan document is
// human-readable YAML: one addressable entry per task, each carrying an
// ordered list of acceptance criteria. Anything that cannot be
// interpreted as a valid plan fails with CorruptPlan before a single
// task is persisted or dispatched.
package planfile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	coreplan "github.com/example/foreman/internal/core/plan"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/secondary"
)

// Document is the on-disk shape of a plan.
type Document struct {
	Title string         `yaml:"title"`
	Tasks []TaskDocument `yaml:"tasks"`
}

// TaskDocument is one task entry in a plan document.
type TaskDocument struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Group       string              `yaml:"group"`
	Criteria    []CriterionDocument `yaml:"criteria"`
}

// CriterionDocument is one acceptance criterion of a task.
type CriterionDocument struct {
	Description string `yaml:"description"`
	Check       string `yaml:"check"`
	Evidence    string `yaml:"evidence"`
}

// Loader implements secondary.PlanLoader over YAML documents on disk.
type Loader struct{}

// NewLoader creates a new document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and validates a plan document.
func (l *Loader) Load(path string) (*models.Plan, []*models.Task, error) {
	return Load(path)
}

// Load reads and validates a plan document. Parse failures and
// structural violations both surface as *coreplan.CorruptPlanError.
func Load(path string) (*models.Plan, []*models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plan document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a plan document from bytes.
func Parse(data []byte) (*models.Plan, []*models.Task, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, &coreplan.CorruptPlanError{Reason: fmt.Sprintf("unparseable plan document: %v", err)}
	}
	if doc.Title == "" {
		return nil, nil, &coreplan.CorruptPlanError{Reason: "plan document has no title"}
	}

	tasks := make([]*models.Task, 0, len(doc.Tasks))
	for i, td := range doc.Tasks {
		t := &models.Task{
			Ordinal:       i + 1,
			Title:         td.Title,
			Description:   td.Description,
			ParallelGroup: td.Group,
		}
		for j, cd := range td.Criteria {
			t.Criteria = append(t.Criteria, models.Criterion{
				Position:    j + 1,
				Description: cd.Description,
				Check:       cd.Check,
				Evidence:    cd.Evidence,
			})
		}
		tasks = append(tasks, t)
	}

	if err := coreplan.Validate(tasks); err != nil {
		return nil, nil, err
	}

	return &models.Plan{Title: doc.Title}, tasks, nil
}

// Ensure Loader implements the interface
var _ secondary.PlanLoader = (*Loader)(nil)

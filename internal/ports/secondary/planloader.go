package secondary

import "github.com/example/foreman/internal/models"

// PlanLoader reads a plan document from an external representation into
// domain records. Loading validates: a document that fails the core plan
// invariants surfaces as *plan.CorruptPlanError and nothing is returned.
type PlanLoader interface {
	Load(path string) (*models.Plan, []*models.Task, error)
}

package secondary

import (
	"context"

	"github.com/example/foreman/internal/models"
)

// CriterionChecker executes the independent check behind one acceptance
// criterion: re-running tests, re-reading modified state, re-invoking
// the feature. It never consults the worker's claims.
type CriterionChecker interface {
	// Check runs the criterion's check command and returns the
	// observed result. A check that cannot be executed at all returns
	// Passed=false with Unverifiable set - never an error, so absence
	// of tooling is recorded rather than skipped.
	Check(ctx context.Context, criterion models.Criterion) CheckResult
}

// CheckResult is the raw observation from running one check.
type CheckResult struct {
	Passed       bool
	Evidence     string
	Unverifiable string
}

// Package checker contains the exec implementation of the criterion
// checker. Each acceptance criterion carries a check command; the
// checker runs it through the shell and records what it observed.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/secondary"
)

// ExecChecker implements secondary.CriterionChecker with shell commands.
type ExecChecker struct {
	shell   string
	timeout time.Duration
}

// NewExecChecker creates a checker running commands via /bin/sh -c with
// the given per-check timeout.
func NewExecChecker(timeout time.Duration) *ExecChecker {
	return &ExecChecker{shell: "/bin/sh", timeout: timeout}
}

// Check runs the criterion's check command. A criterion without a
// command, or one whose command cannot be started, is unverifiable:
// recorded as not passed with the reason, never silently skipped.
func (c *ExecChecker) Check(ctx context.Context, criterion models.Criterion) secondary.CheckResult {
	if strings.TrimSpace(criterion.Check) == "" {
		return secondary.CheckResult{
			Passed:       false,
			Unverifiable: "criterion has no check command",
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.shell, "-c", criterion.Check)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return secondary.CheckResult{
			Passed:   false,
			Evidence: fmt.Sprintf("check exceeded %s ceiling\n%s", c.timeout, truncate(out.String())),
		}
	}

	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return secondary.CheckResult{
				Passed:       false,
				Unverifiable: fmt.Sprintf("check could not be executed: %v", err),
			}
		}
		return secondary.CheckResult{
			Passed:   false,
			Evidence: fmt.Sprintf("%v\n%s", err, truncate(out.String())),
		}
	}

	return secondary.CheckResult{
		Passed:   true,
		Evidence: truncate(out.String()),
	}
}

// truncate bounds evidence size so ledger entries stay readable.
func truncate(s string) string {
	const limit = 4096
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated)"
}

// Ensure ExecChecker implements the interface
var _ secondary.CriterionChecker = (*ExecChecker)(nil)

// Package worker contains the exec implementation of the worker proxy.
// The worker is an external process: it receives the delegation request
// as JSON on stdin and answers with a report as JSON on stdout. Foreman
// neither knows nor cares what happens in between - every claim in the
// report is re-verified independently.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/example/foreman/internal/core/dispatch"
	"github.com/example/foreman/internal/ports/secondary"
)

// ExecProxy implements secondary.WorkerProxy by running a configured
// worker command per delegation.
type ExecProxy struct {
	command []string
	timeout time.Duration
}

// NewExecProxy creates a proxy around the given worker argv. timeout is
// the per-delegation ceiling; a delegation that exceeds it is treated
// as a failure report and consumes an attempt.
func NewExecProxy(command []string, timeout time.Duration) *ExecProxy {
	return &ExecProxy{command: command, timeout: timeout}
}

// Delegate runs the worker for exactly one task and returns its report.
// A timeout or an unparseable report degrades to a failure report
// rather than an error: the attempt happened and must be counted.
// Errors are reserved for misconfiguration (no worker command, worker
// binary missing).
func (p *ExecProxy) Delegate(ctx context.Context, req *dispatch.Request) (*secondary.WorkerReport, error) {
	if len(p.command) == 0 {
		return nil, fmt.Errorf("no worker command configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode delegation request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.command[0], p.command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return &secondary.WorkerReport{
			TaskRef:   req.TaskRef,
			Claimed:   secondary.WorkerClaimFailure,
			TimedOut:  true,
			Narrative: fmt.Sprintf("delegation exceeded %s ceiling", p.timeout),
		}, nil
	}

	if runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) {
			// Worker binary missing or not executable: configuration
			// problem, not a task failure.
			return nil, fmt.Errorf("worker command failed to start: %w", runErr)
		}
	}

	report := &secondary.WorkerReport{}
	if err := json.Unmarshal(stdout.Bytes(), report); err != nil {
		return &secondary.WorkerReport{
			TaskRef:   req.TaskRef,
			Claimed:   secondary.WorkerClaimFailure,
			Narrative: fmt.Sprintf("worker produced no parseable report: %s", firstLine(stderr.String())),
		}, nil
	}

	if report.TaskRef != req.TaskRef {
		return &secondary.WorkerReport{
			TaskRef:   req.TaskRef,
			Claimed:   secondary.WorkerClaimFailure,
			Narrative: fmt.Sprintf("worker reported on %s, expected %s", report.TaskRef, req.TaskRef),
		}, nil
	}

	return report, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Ensure ExecProxy implements the interface
var _ secondary.WorkerProxy = (*ExecProxy)(nil)

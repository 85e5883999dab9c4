package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/wire"
)

// AttachCmd returns the attach command
func AttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach [plan-id] [task-ref]",
		Short: "Open a tmux session for manual work on a blocked task",
		Long: `Create or attach to a tmux session for a task, rooted at the current
workspace. Meant for manual intervention on blocked tasks: fix the
problem by hand, then re-queue the task and run the plan again.

Examples:
  foreman attach PLAN-001 TASK-004`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			planID, taskRef := args[0], args[1]

			// Fail early with a useful message if the task does not exist.
			task, err := wire.PlanService().GetTask(ctx, planID, taskRef)
			if err != nil {
				return fmt.Errorf("task not found: %w", err)
			}

			sessions, err := wire.SessionManager()
			if err != nil {
				return fmt.Errorf("tmux not available: %w", err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			sessionName := fmt.Sprintf("foreman-%s-%s", planID, taskRef)
			if !sessions.SessionExists(ctx, sessionName) {
				if err := sessions.CreateSession(ctx, sessionName, cwd); err != nil {
					return fmt.Errorf("failed to create session: %w", err)
				}
				fmt.Printf("✓ Created session %s for %s: %s\n", sessionName, taskRef, task.Title)
			} else {
				fmt.Printf("✓ Attaching to existing session: %s\n", sessionName)
			}

			tmuxPath, err := exec.LookPath("tmux")
			if err != nil {
				return fmt.Errorf("tmux not found in PATH: %w", err)
			}

			// Replace the current process so the user lands inside tmux.
			attachArgs := sessions.AttachCommand(sessionName)
			if err := syscall.Exec(tmuxPath, attachArgs, os.Environ()); err != nil {
				return fmt.Errorf("failed to exec tmux attach: %w", err)
			}
			return nil
		},
	}
}

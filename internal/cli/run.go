package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [plan-id]",
		Short: "Run a plan to completion",
		Long: `Run the orchestration loop for a plan until every task is done or
blocked.

Each ready task is delegated to the configured worker command, then
every acceptance criterion is re-checked independently of the worker's
self-report. Failing tasks are retried with the verifier's evidence
attached; a task that exhausts its attempts is left blocked for manual
intervention.

Exit status:
  0  every task reached done
  1  one or more tasks remain blocked or undispatched
  2  structural error (corrupt plan, delegation failure); run halted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			planID := args[0]

			fmt.Printf("Running %s...\n\n", planID)

			summary, err := wire.OrchestratorService().Run(ctx, planID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "run halted: %v\n", err)
				os.Exit(2)
			}

			printRunSummary(summary)
			for _, blocked := range summary.Blocked {
				color.Red("🚫 %s: %s (blocked after %d attempts)", blocked.TaskRef, blocked.Title, blocked.Attempts)
				for _, criterion := range blocked.UnresolvedCriteria {
					fmt.Printf("     unresolved: %s\n", criterion)
				}
				fmt.Printf("     inspect with: foreman attach %s %s\n", summary.PlanID, blocked.TaskRef)
			}
			for _, parked := range summary.Parked {
				color.Yellow("⏸ %s: %s (undispatched, %s)", parked.TaskRef, parked.Title, parked.Status)
			}
			if summary.PendingCount > 0 {
				fmt.Println("     resolve stranded in_progress tasks, then run the plan again")
			}

			if !summary.Clean() {
				os.Exit(1)
			}
			return nil
		},
	}
}

func printRunSummary(summary *primary.RunSummary) {
	if summary.Clean() {
		color.Green("✓ %s complete: %d task(s) done", summary.PlanID, summary.DoneCount)
		return
	}
	color.Yellow("%s finished with %d done, %d blocked, %d undispatched", summary.PlanID, summary.DoneCount, summary.BlockedCount, summary.PendingCount)
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [plan-id]",
		Short: "Show the state of every plan, or one plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var plans []*primary.Plan
			if len(args) == 1 {
				plan, err := wire.PlanService().GetPlan(ctx, args[0])
				if err != nil {
					return fmt.Errorf("plan not found: %w", err)
				}
				plans = append(plans, plan)
			} else {
				var err error
				plans, err = wire.PlanService().ListPlans(ctx)
				if err != nil {
					return fmt.Errorf("failed to list plans: %w", err)
				}
			}

			if len(plans) == 0 {
				fmt.Println("No plans found. Import one with: foreman plan import <path>")
				return nil
			}

			for _, plan := range plans {
				tasks, err := wire.PlanService().ListTasks(ctx, plan.ID)
				if err != nil {
					return fmt.Errorf("failed to list tasks for %s: %w", plan.ID, err)
				}

				var done, blocked, pending, inProgress int
				for _, task := range tasks {
					switch task.Status {
					case "done":
						done++
					case "blocked":
						blocked++
					case "in_progress":
						inProgress++
					default:
						pending++
					}
				}

				fmt.Printf("%s: %s [%s]\n", plan.ID, plan.Title, plan.Status)
				fmt.Printf("   %d done, %d blocked, %d in progress, %d pending\n", done, blocked, inProgress, pending)

				for _, task := range tasks {
					if task.Status == "blocked" {
						fmt.Printf("   🚫 %s: %s (%d attempts)\n", task.Ref, task.Title, task.Attempts)
					}
				}
				fmt.Println()
			}
			return nil
		},
	}
}

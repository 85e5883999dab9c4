package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage plans (ordered task lists)",
	Long:  "Import, list, and inspect plans in the foreman plan store",
}

var planImportCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import a plan document",
	Long: `Import a YAML plan document into the plan store.

The document is validated before anything is persisted: every task needs
a title and at least one acceptance criterion, and every parallel group
needs at least two members.

Example document:

  title: Ship the importer
  tasks:
    - title: Parse input
      criteria:
        - description: parser handles empty input
          check: go test ./parser/...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		resp, err := wire.PlanService().ImportPlan(ctx, primary.ImportPlanRequest{Path: args[0]})
		if err != nil {
			return fmt.Errorf("failed to import plan: %w", err)
		}

		fmt.Printf("✓ Imported plan %s with %d task(s)\n", resp.PlanID, resp.TaskCount)
		fmt.Printf("  Run it with: foreman run %s\n", resp.PlanID)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		plans, err := wire.PlanService().ListPlans(ctx)
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}

		if len(plans) == 0 {
			fmt.Println("No plans found.")
			return nil
		}

		fmt.Printf("Found %d plan(s):\n\n", len(plans))
		for _, plan := range plans {
			fmt.Printf("%s: %s [%s]\n", plan.ID, plan.Title, plan.Status)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show a plan with its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		plan, err := wire.PlanService().GetPlan(ctx, args[0])
		if err != nil {
			return fmt.Errorf("plan not found: %w", err)
		}

		fmt.Printf("%s: %s [%s]\n", plan.ID, plan.Title, plan.Status)
		if plan.CreatedAt != "" {
			fmt.Printf("Created: %s\n", plan.CreatedAt)
		}
		fmt.Println()

		for _, task := range plan.Tasks {
			icon := getStatusIcon(task.Status)
			groupStr := ""
			if task.ParallelGroup != "" {
				groupStr = fmt.Sprintf(" (group %s)", task.ParallelGroup)
			}
			fmt.Printf("%s %s: %s [%s]%s\n", icon, task.Ref, task.Title, task.Status, groupStr)
			for _, criterion := range task.Criteria {
				fmt.Printf("     %d. %s\n", criterion.Position, criterion.Description)
			}
		}
		return nil
	},
}

func init() {
	// Register subcommands
	planCmd.AddCommand(planImportCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
}

// PlanCmd returns the plan command
func PlanCmd() *cobra.Command {
	return planCmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect tasks within a plan",
}

var taskListCmd = &cobra.Command{
	Use:   "list [plan-id]",
	Short: "List a plan's tasks in plan order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		status, _ := cmd.Flags().GetString("status")

		tasks, err := wire.PlanService().ListTasks(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		shown := 0
		for _, task := range tasks {
			if status != "" && task.Status != status {
				continue
			}
			shown++

			icon := getStatusIcon(task.Status)
			attemptsStr := ""
			if task.Attempts > 0 {
				attemptsStr = fmt.Sprintf(" (%d attempts)", task.Attempts)
			}
			fmt.Printf("%s %s: %s [%s]%s\n", icon, task.Ref, task.Title, task.Status, attemptsStr)
		}

		if shown == 0 {
			fmt.Println("No tasks found.")
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show [plan-id] [task-ref]",
	Short: "Show task details with acceptance criteria",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		task, err := wire.PlanService().GetTask(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("task not found: %w", err)
		}

		fmt.Printf("%s %s: %s [%s]\n", getStatusIcon(task.Status), task.Ref, task.Title, task.Status)
		if task.Description != "" {
			fmt.Printf("Description: %s\n", task.Description)
		}
		if task.ParallelGroup != "" {
			fmt.Printf("Parallel group: %s\n", task.ParallelGroup)
		}
		fmt.Printf("Attempts: %d\n", task.Attempts)
		if task.CompletedAt != "" {
			fmt.Printf("Completed: %s\n", task.CompletedAt)
		}

		fmt.Println("\nAcceptance criteria:")
		for _, criterion := range task.Criteria {
			fmt.Printf("  %d. %s\n", criterion.Position, criterion.Description)
			if criterion.Check != "" {
				fmt.Printf("     check: %s\n", criterion.Check)
			}
			if criterion.Evidence != "" {
				fmt.Printf("     evidence: %s\n", criterion.Evidence)
			}
		}
		return nil
	},
}

func init() {
	taskListCmd.Flags().String("status", "", "Filter by status (pending, in_progress, done, blocked)")

	// Register subcommands
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
}

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	return taskCmd
}

// getStatusIcon returns an icon for a task status
func getStatusIcon(status string) string {
	switch status {
	case "pending":
		return "📦"
	case "in_progress":
		return "🔧"
	case "done":
		return "✅"
	case "blocked":
		return "🚫"
	default:
		return "📋"
	}
}

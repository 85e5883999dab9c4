package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/ctxutil"
	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/wire"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and extend the knowledge ledger",
	Long:  "The ledger is the append-only log of decisions, failures, and discoveries accumulated across a plan's execution.",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list [plan-id]",
	Short: "List ledger entries for a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		taskRef, _ := cmd.Flags().GetString("task")
		kind, _ := cmd.Flags().GetString("kind")

		entries, err := wire.LedgerService().List(ctx, primary.LedgerFilters{
			PlanID:  args[0],
			TaskRef: taskRef,
			Kind:    kind,
		})
		if err != nil {
			return fmt.Errorf("failed to list ledger entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No ledger entries found.")
			return nil
		}

		for _, entry := range entries {
			ref := entry.TaskRef
			if ref == "" {
				ref = "plan"
			}
			fmt.Printf("[%s] %s %s (%s)\n", entry.Time, ref, entry.Kind, entry.Actor)
			fmt.Printf("    %s\n", entry.Body)
		}
		return nil
	},
}

var ledgerNoteCmd = &cobra.Command{
	Use:   "note [plan-id] [body]",
	Short: "Record an advisory for future delegations",
	Long: `Record a knowledge entry by hand. Advisories, discoveries, and
learnings are injected into every subsequent delegation request for the
plan, so a known pitfall only has to be hit once.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskRef, _ := cmd.Flags().GetString("task")
		kind, _ := cmd.Flags().GetString("kind")

		ctx := ctxutil.WithActor(context.Background(), config.ActorOperator)
		err := wire.LedgerService().Record(ctx, primary.RecordRequest{
			PlanID:  args[0],
			TaskRef: taskRef,
			Kind:    kind,
			Body:    args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to record entry: %w", err)
		}

		fmt.Printf("✓ Recorded %s entry for %s\n", kind, args[0])
		return nil
	},
}

func init() {
	ledgerListCmd.Flags().String("task", "", "Filter by task ref (e.g. TASK-002)")
	ledgerListCmd.Flags().String("kind", "", "Filter by entry kind")

	ledgerNoteCmd.Flags().String("task", "", "Attach the entry to a task ref")
	ledgerNoteCmd.Flags().String("kind", models.LedgerKindAdvisory, "Entry kind (advisory, discovery, learning)")

	// Register subcommands
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerNoteCmd)
}

// LedgerCmd returns the ledger command
func LedgerCmd() *cobra.Command {
	return ledgerCmd
}

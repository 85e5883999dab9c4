package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/cli"
	"github.com/example/foreman/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "foreman",
		Short:   "foreman - plan orchestration with independent verification",
		Version: version.String(),
		Long: `foreman drives ordered task plans through untrusted workers.
Each task is delegated one at a time, every acceptance criterion is
re-checked independently of the worker's claims, and everything learned
along the way lands in an append-only ledger.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.PlanCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.LedgerCmd())
	rootCmd.AddCommand(cli.AttachCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

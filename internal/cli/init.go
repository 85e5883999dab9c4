package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the foreman workspace",
		Long:  `Initialize the foreman plan store at .foreman/foreman.db and write a default config.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing foreman workspace at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Println("✓ Plan store initialized")

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			if _, err := config.LoadConfig(cwd); err != nil {
				if err := config.SaveConfig(cwd, config.DefaultConfig()); err != nil {
					return fmt.Errorf("failed to write default config: %w", err)
				}
				fmt.Println("✓ Default config written to .foreman/config.json")
			} else {
				fmt.Println("✓ Existing config kept")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  foreman plan import plan.yaml")
			fmt.Println("  foreman run PLAN-001")

			return nil
		},
	}
}

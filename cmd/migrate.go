package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathom0/fathom/internal/config"
	"github.com/fathom0/fathom/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Long: `Apply all pending schema migrations to the configured PostgreSQL
database. The serve command migrates on startup as well; this command exists
for deploy pipelines that migrate before rolling the service.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := database.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/observability"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Apply, roll back or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var res *db.MigrateResult
	switch action {
	case "version":
		res, err = db.MigrationVersion(cfg.DatabaseURL)
	default:
		res, err = db.Migrate(cfg.DatabaseURL, db.MigrateDirection(action))
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	observability.NewPrinter(os.Stdout).PrintMigrateResult(action, res)
	return nil
}

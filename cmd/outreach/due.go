package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/observability"
	"github.com/jonathan/outreach-tracker/internal/reminder"
	"github.com/jonathan/outreach-tracker/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dueFilter string
	dueJSON   bool
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List companies that need a follow-up",
	RunE:  runDue,
}

func init() {
	dueCmd.Flags().StringVar(&dueFilter, "filter", string(types.FollowUpAll), "overdue, due_today or all")
	dueCmd.Flags().BoolVar(&dueJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(dueCmd)
}

func runDue(cmd *cobra.Command, _ []string) error {
	filter, ok := types.ParseFollowUpFilter(dueFilter)
	if !ok {
		return fmt.Errorf("invalid --filter %q: want overdue, due_today or all", dueFilter)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	companies, err := database.ListAllCompanies(cmd.Context())
	if err != nil {
		return err
	}

	now := time.Now().In(loc)
	followUps := reminder.FollowUps(companies, now, filter, func(c *db.Company, err error) {
		log.Warn("skipping company with invalid history", zap.String("company", c.Name), zap.Error(err))
	})

	if dueJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(followUps)
	}
	observability.NewPrinter(os.Stdout).PrintFollowUps(followUps, filter, now)
	return nil
}

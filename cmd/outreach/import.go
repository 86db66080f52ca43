package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/importer"
	"github.com/jonathan/outreach-tracker/internal/observability"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Bulk-import companies and their communication history",
	Long: `Read a JSON array of companies, validate it against the import schema and
create each company with its communications. Companies that already exist by
name are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := importer.Import(cmd.Context(), database, f, log)
	printer := observability.NewPrinter(os.Stdout)
	printer.PrintImportResult(res)

	var verr *importer.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprint(os.Stderr, verr.Error())
		return fmt.Errorf("%s is not a valid import file", args[0])
	}
	return err
}

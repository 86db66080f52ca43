package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/outreach-tracker/internal/config"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/spf13/cobra"
)

var (
	hashPassword string
	hashEmail    string
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password with the configured bcrypt cost and pepper",
	Long: `Print a bcrypt hash suitable for seeding an admin user. The password is read
from --password or, if omitted, from the first line of stdin. With --email the
admin user is inserted directly instead.`,
	RunE: runHashPassword,
}

func init() {
	hashPasswordCmd.Flags().StringVar(&hashPassword, "password", "", "Password to hash (read from stdin if empty)")
	hashPasswordCmd.Flags().StringVar(&hashEmail, "email", "", "Create an admin user with this email")
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	pw := hashPassword
	if pw == "" {
		var err error
		if pw, err = readPassword(cmd.InOrStdin()); err != nil {
			return err
		}
	}

	pwCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	if err := pwCfg.CheckStrength(pw); err != nil {
		return err
	}
	hash, err := pwCfg.HashPassword(pw)
	if err != nil {
		return err
	}

	if hashEmail == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := database.CreateAdminUser(cmd.Context(), strings.ToLower(strings.TrimSpace(hashEmail)), hash)
	if errors.Is(err, db.ErrDuplicate) {
		return fmt.Errorf("admin %s already exists", hashEmail)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", hashEmail, id)
	return err
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", fmt.Errorf("no password given")
	}
	return pw, nil
}

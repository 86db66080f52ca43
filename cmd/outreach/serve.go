package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/outreach-tracker/internal/config"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/reminder"
	"github.com/jonathan/outreach-tracker/internal/server"
	"github.com/jonathan/outreach-tracker/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the company and communication endpoints.
Pending migrations are applied first unless auto_migrate is off. The follow-up
reminder runs alongside the server when enabled.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		res, err := db.Migrate(cfg.DatabaseURL, db.MigrateUp)
		if err != nil {
			return err
		}
		log.Info("database migrated", zap.Uint("version", res.Version), zap.Bool("changed", res.Changed))
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srvCfg := server.Config{
		Port:               cfg.Port,
		AuthEnabled:        cfg.AuthEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Location:           loc,
		RateLimit:          ratelimit.LoadConfig(),
		Registry:           registry,
		Logger:             log,
	}
	if cfg.AuthEnabled {
		if srvCfg.JWT, err = config.NewJWTConfig(); err != nil {
			return err
		}
		if srvCfg.Password, err = config.NewPasswordConfig(); err != nil {
			return err
		}
	} else {
		log.Warn("authentication is disabled; every endpoint is public")
	}

	srv, err := server.New(srvCfg, database)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Build everything that can fail before any goroutine starts.
	sweeper, err := newSweeper(cfg, database, loc, registry, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if sweeper != nil {
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	return g.Wait()
}

// newSweeper returns the follow-up reminder, or nil when it is disabled.
func newSweeper(cfg *config.Config, store reminder.CompanyLister, loc *time.Location, registry prometheus.Registerer, log *zap.Logger) (*reminder.Sweeper, error) {
	if !cfg.ReminderEnabled {
		return nil, nil
	}
	return reminder.New(store, reminder.Config{
		Schedule: cfg.ReminderSchedule,
		Location: loc,
		Registry: registry,
		Logger:   log,
	})
}

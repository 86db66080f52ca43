package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs the sweep hourly.
const DefaultSchedule = "@every 1h"

// CompanyLister loads every company with its communications. *db.DB implements it.
type CompanyLister interface {
	ListAllCompanies(ctx context.Context) ([]db.Company, error)
}

// Config configures a Sweeper. Zero values get defaults.
type Config struct {
	Schedule string          // cron expression or descriptor; DefaultSchedule if empty
	Location *time.Location  // zone for cron and for "today"; time.Local if nil
	Clock    func() time.Time
	Timeout  time.Duration // per run; 1m if zero
	Registry prometheus.Registerer
	Logger   *zap.Logger
}

// Result summarizes one sweep.
type Result struct {
	At        time.Time
	Checked   int
	Overdue   int
	DueToday  int
	Skipped   int
	FollowUps []types.FollowUp
}

// Sweeper periodically evaluates all companies and reports the ones needing follow-up.
type Sweeper struct {
	store    CompanyLister
	schedule cron.Schedule
	spec     string
	cfg      Config
	log      *zap.Logger

	overdue  prometheus.Gauge
	dueToday prometheus.Gauge
	lastRun  prometheus.Gauge
	runs     *prometheus.CounterVec
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New creates a Sweeper. It fails if the schedule does not parse.
func New(store CompanyLister, cfg Config) (*Sweeper, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	sched, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder schedule %q: %w", cfg.Schedule, err)
	}

	factory := promauto.With(cfg.Registry)
	return &Sweeper{
		store:    store,
		schedule: sched,
		spec:     cfg.Schedule,
		cfg:      cfg,
		log:      cfg.Logger.Named("reminder"),
		overdue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "outreach_companies_overdue",
			Help: "Companies whose next communication is past due, as of the last sweep",
		}),
		dueToday: factory.NewGauge(prometheus.GaugeOpts{
			Name: "outreach_companies_due_today",
			Help: "Companies whose next communication is due today, as of the last sweep",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "outreach_reminder_last_run_timestamp_seconds",
			Help: "Unix time of the last successful sweep",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outreach_reminder_runs_total",
			Help: "Sweeps by result",
		}, []string{"result"}),
	}, nil
}

// RunOnce evaluates every company against a single instant, updates the gauges and logs
// each company that is overdue or due today.
func (s *Sweeper) RunOnce(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	companies, err := s.store.ListAllCompanies(ctx)
	if err != nil {
		s.runs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	now := s.cfg.Clock().In(s.cfg.Location)
	res := &Result{At: now, Checked: len(companies)}
	res.FollowUps = FollowUps(companies, now, types.FollowUpAll, func(c *db.Company, err error) {
		res.Skipped++
		s.log.Warn("skipping company with unschedulable history",
			zap.String("company_id", c.ID.String()), zap.Error(err))
	})

	for _, f := range res.FollowUps {
		if f.IsOverdue {
			res.Overdue++
		}
		if f.IsDueToday {
			res.DueToday++
		}
		s.log.Info("follow-up needed",
			zap.String("company", f.CompanyName),
			zap.String("company_id", f.CompanyID.String()),
			zap.Bool("overdue", f.IsOverdue),
			zap.Bool("due_today", f.IsDueToday),
			zap.Time("due_at", f.NextScheduled.Date),
			zap.String("type", string(f.NextScheduled.Type)),
		)
	}

	s.overdue.Set(float64(res.Overdue))
	s.dueToday.Set(float64(res.DueToday))
	s.lastRun.Set(float64(now.Unix()))
	s.runs.WithLabelValues("ok").Inc()

	s.log.Info("sweep complete",
		zap.Int("checked", res.Checked),
		zap.Int("overdue", res.Overdue),
		zap.Int("due_today", res.DueToday),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// Run sweeps once immediately, then on the configured schedule until ctx is cancelled.
// Overlapping runs are skipped.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.cfg.Location),
		cron.WithLogger(cronLogger{s.log.Sugar()}),
		cron.WithChain(cron.Recover(cronLogger{s.log.Sugar()}), cron.SkipIfStillRunning(cronLogger{s.log.Sugar()})),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.sweep(ctx) }))

	s.sweep(ctx)
	c.Start()
	s.log.Info("reminder started", zap.String("schedule", s.spec), zap.String("tz", s.cfg.Location.String()))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("reminder stopped")
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("sweep failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

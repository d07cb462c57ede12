package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/notify"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/worker"
)

// Execute runs the command tree with ctx. Command output goes to stdout, errors to stderr.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	root.SetOut(os.Stdout)
	return root.ExecuteContext(ctx)
}

// flags holds the persistent flag values that override environment configuration.
type flags struct {
	dataDir  string
	logLevel string
}

// app is the wiring shared by every subcommand. It is built once per invocation.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	tracker    *service.Tracker
	postgres   *persistence.Postgres
	redis      *persistence.Redis
}

func newRootCmd() *cobra.Command {
	var (
		f flags
		a = &app{}
	)

	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track tickets and personal reminders in CSV files",
		Long: `tracker keeps active tickets and reminders in CSV files and moves each record
into an archive file once it is marked Done.

Common workflows:

  Open the interactive menu:
    tracker

  Add and close a ticket:
    tracker ticket add --number T1 --name "Printer jam" --status Urgent
    tracker ticket update 1 --status Done --team EUS

  Get a reminder at 10:00 on a date:
    tracker remind 2025-03-01 "renew certificates"

Configuration is read from the environment and an optional .env file:
  TRACKER_DATA_DIR   directory holding the four CSV files (default: .)
  LOG_LEVEL          debug, info, warn or error (default: info)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), f)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, a)
		},
	}
	root.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "directory holding the CSV files (overrides TRACKER_DATA_DIR)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newMenuCmd(a),
		newTicketCmd(a),
		newReminderCmd(a),
		newRemindCmd(a),
		newServeCmd(a),
		newBackupCmd(a),
		newHashPasswordCmd(),
	)
	return root
}

// open loads configuration and wires the tracker with its event subscribers.
func (a *app) open(ctx context.Context, f flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.dataDir != "" {
		cfg.Storage.DataDir = f.dataDir
	}
	if f.logLevel != "" {
		cfg.Logger.Level = f.logLevel
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	a.metrics = observability.NewMetrics()
	a.dispatcher = events.NewInMemoryDispatcher(logger)

	a.postgres, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if a.postgres.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, a.postgres.Execer(), logger); err != nil {
			return err
		}
	}
	a.redis = persistence.NewRedis(cfg.Redis, logger)

	worker.StartNotificationWorker(a.dispatcher, worker.Subscribers{
		Notifications: service.NewNotificationService(a.dispatcher, logger),
		Publisher:     notify.NewRedisPublisher(a.redis.Client, cfg.Redis.Channel, logger),
		Mirror:        persistence.NewArchiveMirror(a.postgres.Execer(), logger),
	})

	a.tracker, err = service.NewTracker(service.TrackerDependencies{
		Storage:    cfg.Storage,
		Clock:      clock.Real(),
		Dispatcher: a.dispatcher,
		Metrics:    a.metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	return a.tracker.Init()
}

func (a *app) close() {
	a.redis.Close()
	a.postgres.Close()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

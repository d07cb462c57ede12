package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-tracker/internal/api/http"
	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.App.Addr()
			}

			authService := service.NewAuthService(a.cfg.Auth, clock.Real(), a.logger)
			if !authService.Enabled() {
				a.logger.Warn("AUTH_PASSWORD_HASH not set; HTTP API is unauthenticated")
			}
			sched := scheduler.New(scheduler.Dependencies{
				Clock:    clock.Real(),
				Logger:   a.logger,
				FireHour: a.cfg.Scheduler.FireHour,
			})
			defer sched.Stop()

			server := httptransport.NewServer(httptransport.ServerDependencies{
				App:       a.cfg.App,
				Storage:   a.cfg.Storage,
				Tracker:   a.tracker,
				Auth:      authService,
				Scheduler: sched,
				Postgres:  a.postgres,
				Redis:     a.redis,
				Metrics:   a.metrics,
				Logger:    a.logger,
			})

			listenErr := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", zap.String("addr", addr))
				listenErr <- server.Listen(addr)
			}()

			select {
			case err := <-listenErr:
				return err
			case <-cmd.Context().Done():
				a.logger.Info("shutting down")
				return server.Shutdown()
			}
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default APP_HOST:APP_PORT)")
	return serveCmd
}

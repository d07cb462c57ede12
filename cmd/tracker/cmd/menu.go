package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
	"github.com/spec-kit/ticket-tracker/internal/shell"
)

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, a)
		},
	}
}

func runMenu(cmd *cobra.Command, a *app) error {
	var sh *shell.Shell
	sched := scheduler.New(scheduler.Dependencies{
		Clock:    clock.Real(),
		Notifier: scheduler.NotifierFunc(func(n scheduler.Notification) { sh.Notifier().Notify(n) }),
		Logger:   a.logger,
		FireHour: a.cfg.Scheduler.FireHour,
	})
	defer sched.Stop()

	sh = shell.New(shell.Dependencies{
		Tracker:   a.tracker,
		Scheduler: sched,
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
		Logger:    a.logger,
	})
	return sh.Run(cmd.Context())
}

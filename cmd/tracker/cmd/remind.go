package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/scheduler"
)

func newRemindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remind <YYYY-MM-DD> <message>",
		Short: "Print a message at the configured hour on a date, then exit",
		Long: `remind waits in the foreground until the fire time (REMINDER_FIRE_HOUR, default 10:00
local time) on the given date and prints the message. Interrupting the command
cancels the reminder.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fired := make(chan struct{})
			sched := scheduler.New(scheduler.Dependencies{
				Clock: clock.Real(),
				Notifier: scheduler.NotifierFunc(func(n scheduler.Notification) {
					cmd.Printf("Reminder: %s\n", n.Message)
					close(fired)
				}),
				Logger:   a.logger,
				FireHour: a.cfg.Scheduler.FireHour,
			})

			job, err := sched.ScheduleOneShot(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			cmd.Printf("Reminder scheduled for %s.\n", domain.NewTimestamp(job.FireAt))

			select {
			case <-fired:
			case <-cmd.Context().Done():
				sched.Stop()
				cmd.Println("Reminder cancelled.")
			}
			return nil
		},
	}
}

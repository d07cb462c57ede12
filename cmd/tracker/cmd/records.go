package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

func newTicketCmd(a *app) *cobra.Command {
	ticketCmd := &cobra.Command{
		Use:   "ticket",
		Short: "Add, list, update and remove tickets",
	}

	var number, name, status string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an active ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			ticket, err := a.tracker.AddTicket(cmd.Context(), number, name, st)
			if err != nil {
				return err
			}
			cmd.Printf("Ticket %s added on %s.\n", ticket.Number, ticket.LogDate)
			return nil
		},
	}
	addCmd.Flags().StringVar(&number, "number", "", "ticket number")
	addCmd.Flags().StringVar(&name, "name", "", "ticket name")
	addCmd.Flags().StringVar(&status, "status", "", "status label or menu index")
	_ = addCmd.MarkFlagRequired("number")
	_ = addCmd.MarkFlagRequired("status")

	ticketCmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List active tickets in file order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tickets, err := a.tracker.Tickets.ListActive(cmd.Context())
				if err != nil {
					return err
				}
				printTable(cmd.OutOrStdout(), []string{"#", "NUMBER", "NAME", "STATUS", "LOGGED"}, len(tickets), func(i int) []any {
					t := tickets[i]
					return []any{i + 1, t.Number, t.Name, t.Status, t.LogDate}
				})
				return nil
			},
		},
		&cobra.Command{
			Use:   "archive",
			Short: "List archived tickets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				archived, err := a.tracker.Tickets.ListArchive(cmd.Context())
				if err != nil {
					return err
				}
				printTable(cmd.OutOrStdout(), []string{"NUMBER", "NAME", "LOGGED", "CLOSED", "TEAM"}, len(archived), func(i int) []any {
					t := archived[i]
					return []any{t.Number, t.Name, t.LogDate, t.ClosingDate, t.Team}
				})
				return nil
			},
		},
		newUpdateCmd(a, "ticket", true, func(a *app) *service.TicketLifecycle { return a.tracker.Tickets }),
		newRemoveCmd(a, "ticket", "number", func(a *app) *service.TicketLifecycle { return a.tracker.Tickets }),
	)
	return ticketCmd
}

func newReminderCmd(a *app) *cobra.Command {
	reminderCmd := &cobra.Command{
		Use:   "reminder",
		Short: "Add, list, update and remove reminders",
	}

	var name, description, status string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an active reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			reminder, err := a.tracker.AddReminder(cmd.Context(), name, description, st)
			if err != nil {
				return err
			}
			cmd.Printf("Reminder %s added on %s.\n", reminder.Name, reminder.LogDate)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "reminder name")
	addCmd.Flags().StringVar(&description, "description", "", "reminder description")
	addCmd.Flags().StringVar(&status, "status", "", "status label or menu index")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("status")

	reminderCmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List active reminders in file order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				reminders, err := a.tracker.Reminders.ListActive(cmd.Context())
				if err != nil {
					return err
				}
				printTable(cmd.OutOrStdout(), []string{"#", "NAME", "DESCRIPTION", "STATUS", "LOGGED"}, len(reminders), func(i int) []any {
					r := reminders[i]
					return []any{i + 1, r.Name, r.Description, r.Status, r.LogDate}
				})
				return nil
			},
		},
		&cobra.Command{
			Use:   "archive",
			Short: "List archived reminders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				archived, err := a.tracker.Reminders.ListArchive(cmd.Context())
				if err != nil {
					return err
				}
				printTable(cmd.OutOrStdout(), []string{"NAME", "DESCRIPTION", "LOGGED", "CLOSED"}, len(archived), func(i int) []any {
					r := archived[i]
					return []any{r.Name, r.Description, r.LogDate, r.ClosingDate}
				})
				return nil
			},
		},
		newUpdateCmd(a, "reminder", false, func(a *app) *service.ReminderLifecycle { return a.tracker.Reminders }),
		newRemoveCmd(a, "reminder", "name", func(a *app) *service.ReminderLifecycle { return a.tracker.Reminders }),
	)
	return reminderCmd
}

// newUpdateCmd builds `<kind> update <position>`. The engine is resolved lazily
// because the tracker only exists once PersistentPreRunE has run.
func newUpdateCmd[A, R any](a *app, kind string, withTeam bool, engine func(*app) *service.Lifecycle[A, R]) *cobra.Command {
	var status, team, expect string
	updateCmd := &cobra.Command{
		Use:   "update <position>",
		Short: "Change the status of the " + kind + " at a list position; Done archives it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			upd := service.StatusUpdate{Selector: args[0], Status: st, ExpectedID: expect}
			if team != "" {
				parsed, ok := domain.ParseTeam(team)
				if !ok {
					return apperrors.NewMissingClassification(fmt.Sprintf("unknown team %q", team))
				}
				upd.Team = parsed
			}
			outcome, err := engine(a).UpdateStatus(cmd.Context(), upd)
			if err != nil {
				return err
			}
			if outcome.Archived != nil {
				cmd.Printf("%s at position %d archived.\n", capitalize(kind), outcome.Position)
				return nil
			}
			cmd.Printf("%s at position %d is now %s.\n", capitalize(kind), outcome.Position, st)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&status, "status", "", "new status label or menu index")
	updateCmd.Flags().StringVar(&expect, "expect", "", "fail unless the record at the position has this identifier")
	if withTeam {
		updateCmd.Flags().StringVar(&team, "team", "", "team that closed the ticket (required with Done)")
	}
	_ = updateCmd.MarkFlagRequired("status")
	return updateCmd
}

func newRemoveCmd[A, R any](a *app, kind, idName string, engine func(*app) *service.Lifecycle[A, R]) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <" + idName + ">",
		Short: "Remove every active " + kind + " with this " + idName,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := engine(a).Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d %s(s).\n", removed, kind)
			return nil
		},
	}
}

func parseStatusFlag(raw string) (domain.Status, error) {
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown status %q", raw), nil)
	}
	return status, nil
}

func printTable(w io.Writer, header []string, rows int, row func(int) []any) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for i := 0; i < rows; i++ {
		for j, v := range row(i) {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

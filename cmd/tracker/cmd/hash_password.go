package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for AUTH_PASSWORD_HASH",
		Long:  `Reads the password from the argument or, when omitted, from the first line of stdin.`,
		Args:  cobra.MaximumNArgs(1),
		// Needs no store files or backends.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRun: func(*cobra.Command, []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					password = strings.TrimSpace(scanner.Text())
				}
			}
			if password == "" {
				return apperrors.NewValidationError("password required", nil)
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
	hashCmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default bcrypt.DefaultCost)")
	return hashCmd
}

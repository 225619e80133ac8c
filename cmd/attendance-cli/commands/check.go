package commands

import (
	"attendance-backend/lib/attendance"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <username> <password>",
	Short: "Logs into the portal and prints the attendance report.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		record, err := b.Check(cmd.Context(), attendance.Credential{
			Identifier: args[0],
			Secret:     args[1],
		})
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), record)
	},
}

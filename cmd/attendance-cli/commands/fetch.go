package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <owner> <keyword>",
	Short: "Prints the attendance report of the account saved under owner.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		record, err := b.Report(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), record)
	},
}

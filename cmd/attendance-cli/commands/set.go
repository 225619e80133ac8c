package commands

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/textutil"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <owner> <username> <password> <keyword>",
	Short: "Saves portal credentials under owner, retrievable later with the keyword.",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		err = b.SaveAccount(cmd.Context(), args[0], attendance.Credential{
			Identifier: args[1],
			Secret:     args[2],
		}, args[3])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account saved, your keyword is %q.\n", textutil.NormalizeKeyword(args[3]))
		return nil
	},
}

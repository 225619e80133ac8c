package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(unsetCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account <owner>",
	Short: "Shows the portal username saved under owner.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		account, err := b.GetAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(account)
		}
		t := newTable(w)
		t.AppendRow(table.Row{"Owner", account.Owner})
		t.AppendRow(table.Row{"Username", account.Username})
		t.AppendRow(table.Row{"Updated", account.UpdatedAt.Local().Format(time.DateTime)})
		t.Render()
		return nil
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <owner> <keyword>",
	Short: "Removes the credentials saved under owner.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		err = b.DeleteAccount(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account of %s removed.\n", args[0])
		return nil
	},
}

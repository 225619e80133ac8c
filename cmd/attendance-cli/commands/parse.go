package commands

import (
	"attendance-backend/lib/scrapers/webpros"
	"attendance-backend/lib/timezone"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var parseDate string

func init() {
	parseCmd.Flags().StringVar(&parseDate, "date", "", "The day (dd/mm/yyyy) whose column is today's attendance, defaults to today.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <register.html> [--date dd/mm/yyyy]",
	Short: "Parses a saved academic register page without logging in.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := timezone.Now()
		if parseDate != "" {
			var err error
			now, err = timezone.ParseDate(parseDate)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		html, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		record, err := webpros.ParseReport(cmd.Context(), string(html), now)
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), record)
	},
}

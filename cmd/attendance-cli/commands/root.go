package commands

import (
	"attendance-backend/lib/telemetry"
	"context"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverUrl   string
	accessToken string
	configPath  string
	verbose     bool
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "attendance-cli",
	Short: "attendance-cli checks attendance on the webpros portal, locally or through an attendance-server.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serverUrl, "server", os.Getenv("ATTENDANCE_SERVER"), "Base url of an attendance-server, when empty a browser is started locally.")
	flags.StringVar(&accessToken, "token", os.Getenv("ATTENDANCE_ACCESS_TOKEN"), "Access token of the attendance-server.")
	flags.StringVar(&configPath, "config", "config.json5", "Config used when running locally.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	flags.BoolVar(&jsonOutput, "json", false, "Print reports as json instead of tables.")
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

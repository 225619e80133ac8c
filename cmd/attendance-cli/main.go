package main

import (
	"attendance-backend/cmd/attendance-cli/commands"
	"attendance-backend/lib/serviceutil"
	"attendance-backend/lib/telemetry"
	"context"
	"fmt"
	"os"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "attendance-cli")
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "failed to setup telemetry:", err)
	}

	err = commands.ExecuteContext(ctx)
	tel.Shutdown(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

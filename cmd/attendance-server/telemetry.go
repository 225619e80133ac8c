package main

import (
	"attendance-backend/lib/serviceutil"
	"attendance-backend/lib/telemetry"
	"context"
	"log/slog"
	"os"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "attendance-server")
	if os.IsNotExist(err) {
		slog.WarnContext(ctx, "no telemetry.json5 found, traces and metrics will not be exported")
	} else if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)
}

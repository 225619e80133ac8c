package main

import (
	"attendance-backend/lib/browser"
	"attendance-backend/lib/configutil"
	"attendance-backend/lib/dumputil"
	"attendance-backend/lib/serviceutil"
	"attendance-backend/services/accounts"
	attendanced "attendance-backend/services/attendance"
	"flag"
	"log/slog"
	"time"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the server config.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 5000
	}

	opts := attendanced.Options{Session: cfg.Portal.SessionOptions()}
	if cfg.DumpDir != "" {
		output, err := dumputil.NewFilesystemOutput(cfg.DumpDir)
		if err != nil {
			serviceutil.Fatal("create dump directory", err)
		}
		opts.Dump = output
		// verbose runs keep every register, not only the broken ones
		opts.DumpAll = *verbose
	}

	service := attendanced.NewService(browser.NewChromeLauncher(cfg.Browser), opts)
	queue := attendanced.NewQueue(service)
	queueStopped := make(chan struct{})
	go func() {
		queue.Run(ctx)
		close(queueStopped)
	}()

	var store attendanced.AccountStore
	if cfg.Accounts.Database.File != "" {
		database, err := cfg.Accounts.Database.OpenDB(accounts.Schema)
		if err != nil {
			serviceutil.Fatal("open accounts database", err)
		}
		defer database.Close()

		store = accounts.NewService(database, accounts.Options{
			CacheTTL: time.Duration(cfg.Accounts.CacheTTLMinutes) * time.Minute,
		})
	} else {
		slog.WarnContext(ctx, "no accounts database configured, /accounts routes are disabled")
	}

	handler := attendanced.NewHandler(queue, store)
	serviceutil.StartHttpServer(ctx, cfg.Port, serviceutil.VerifyAccessToken(cfg.AccessToken, handler))

	// let the retrieval in progress finish before the browser is torn down
	<-queueStopped
}

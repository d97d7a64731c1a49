package main

import (
	"context"
	"fmt"
	"os"

	"gastos/internal/app"
	"gastos/internal/cli"
	applog "gastos/internal/log"
	"gastos/internal/notify"
)

func main() {
	cli.LoadEnvFile()
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level).WithComponent(applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	store, backendRes, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer backendRes.Close()

	reports := cli.NewReportService(cfg)
	// Every notification is also returned as an error and printed below.
	quiet := notify.Func(func(context.Context, notify.Notification) error { return nil })
	ctrl, err := app.NewController(ctx, store, reports, app.WithLogger(logger), app.WithNotifier(quiet))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	e := &env{ctrl: ctrl, labels: reports.Labels(), out: os.Stdout, defaultFormat: cfg.ReportFormat}
	if err := run(ctx, e, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		backendRes.Close()
		os.Exit(exitCode(err))
	}
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "recurring-worker",
		Short:        "Copy last month's fixed entries into the current month for every user",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(*cobra.Command, []string) {
			run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional yaml config file")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) {
	_ = cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(configPath, log.ComponentRecurring)

	logger.Info("Starting recurring-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)

	copier := services.NewRecurrenceCopier(res.Store, res.Events)
	processor := services.NewRecurringProcessor(res.Store, copier, nil, services.RecurringProcessorConfig{
		Interval: cfg.RecurringInterval,
	})

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend,
		"events_enabled", res.Events != nil)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := processor.Stop(stopCtx); err != nil {
			logger.Warn("Recurring processor did not stop cleanly", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start recurring processor", log.FieldError, err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}

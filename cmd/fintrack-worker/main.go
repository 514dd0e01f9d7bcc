package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "fintrack-worker",
		Short:        "Export month reports on ledger events and on a refresh interval",
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
	cfg, logger := cli.LoadAndValidateConfig(configPath, log.ComponentWorker)

	logger.Info("Starting fintrack-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.AMQP == nil {
		logger.Warn("AMQP unavailable, reports are refreshed on the interval only")
	}

	writer, err := cli.NewReportWriter(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize report writer", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(res.Store, writer, nil)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	if res.AMQP != nil {
		g.Go(func() error {
			err := res.AMQP.ConsumeLedgerChanges(gctx, exporter.HandleLedgerEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		logger.Info("Report refresh configured", "interval", cfg.RefreshInterval)
		return exporter.RunRefresh(gctx, cfg.RefreshInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

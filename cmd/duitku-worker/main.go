package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"duitku/internal/cli"
	applog "duitku/internal/log"
	"duitku/internal/services"
	"duitku/internal/sheets"
	gsheet "duitku/internal/sheets/google"
	mem "duitku/internal/sheets/memory"
	"duitku/internal/stats"
	"duitku/internal/worker"
)

func main() {
	cfg, logger, loc := cli.LoadAndValidateConfig(applog.ComponentWorker)
	logger.Info("Starting duitku-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	var exporter sheets.ReportExporter
	switch cfg.ExportBackend {
	case "sheets":
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		exporter = mem.New()
		logger.Info("Memory exporter initialized")
	}

	// Every event recomputes from the store, so the worker runs uncached
	reports := services.NewReportService(repo, stats.NewEngine(loc), nil)
	reportWorker := worker.NewReportWorker(reports, exporter)

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient := cli.InitAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		g.Go(func() error {
			err := amqpClient.ConsumeTransactionChanged(gctx, reportWorker.HandleTransactionChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping AMQP consumption, relying on periodic export")
	}

	g.Go(func() error {
		reportWorker.Run(gctx, cfg.ExportInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"duitku/internal/cache"
	"duitku/internal/cli"
	apphttp "duitku/internal/http"
	applog "duitku/internal/log"
	"duitku/internal/services"
	"duitku/internal/stats"
)

func main() {
	cfg, logger, loc := cli.LoadAndValidateConfig(applog.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ready := []apphttp.ReadinessCheck{{Name: "storage", Ping: repo.Ping}}

	// Without AMQP, changes only reach in-process subscribers
	var publisher services.ChangePublisher
	if amqpClient := cli.InitAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
		ready = append(ready, apphttp.ReadinessCheck{
			Name: "amqp",
			Ping: func(context.Context) error { return amqpClient.Ping() },
		})
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	reportCache := cache.NewLRUCache[stats.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)
	defer cacheManager.Stop()

	notifier := services.NewNotifier()
	reports := services.NewReportService(repo, stats.NewEngine(loc), reportCache)
	go reports.Watch(ctx, notifier)
	transactions := services.NewTransactionService(repo, publisher, notifier, reports)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions: transactions,
		Reports:      reports,
		Budget:       services.NewBudgetService(repo, repo, loc),
		Settings:     repo,
		Ready:        ready,
		Location:     loc,
	}, logger)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting duitku server", "port", cfg.Port, "timezone", loc.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-shutdownDone
	logger.Info("Server stopped gracefully")
}

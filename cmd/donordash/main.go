package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donordash/internal/amqp"
	"donordash/internal/backend"
	"donordash/internal/cli"
	apphttp "donordash/internal/http"
	"donordash/internal/services"
	"donordash/internal/source/memory"
	"donordash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}
	if result.AMQP != nil {
		defer result.AMQP.Close()
	}

	dashboard := services.NewDashboardService(result.Source)
	refresh := worker.NewRefreshWorker(dashboard, cfg.RefreshInterval)
	if err := refresh.StartupLoad(context.Background()); err != nil {
		// Serve the demo dataset rather than an empty dashboard.
		logger.Error("Initial dataset load failed, falling back to sample data",
			"error", err, "backend", cfg.DataBackend)
		records, _ := memory.NewSample().Load(context.Background())
		dashboard.LoadDataset(records)
	}

	srv := apphttp.NewServer(":"+cfg.Port, dashboard)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic reload keeps the dataset fresh even without a refresh bus.
	go func() {
		if err := refresh.RunPeriodic(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Periodic refresh stopped", "error", err)
		}
	}()

	// Reload the dataset when the import worker announces a new export.
	if result.AMQP != nil {
		go func() {
			err := result.AMQP.ConsumeRefresh(ctx, func(msg *amqp.DatasetRefreshMessage) error {
				return refresh.HandleRefreshMessage(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Refresh consumption stopped", "error", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting donordash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

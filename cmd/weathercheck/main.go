package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weathercheck/internal/client"
	"github.com/kjstillabower/weathercheck/internal/config"
	"github.com/kjstillabower/weathercheck/internal/observability"
	"github.com/kjstillabower/weathercheck/internal/repl"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	weatherClient.SetRateLimit(cfg.RateLimitPerMinute)
	weatherClient.SetDefaultCountry(cfg.DefaultCountry)
	weatherClient.SetLogger(logger)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = observability.NewMetricsServer(cfg.MetricsAddr)
		go func() {
			logger.Info("metrics listener starting", zap.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics listener", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := repl.New(weatherClient, os.Stdin, os.Stdout, logger)
	if err := loop.Run(ctx); err != nil {
		logger.Error("prompt loop", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.FlushTelemetry(flushCtx, logger, metricsSrv); err != nil {
		logger.Debug("telemetry flush", zap.Error(err))
	}
}

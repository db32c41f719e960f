// Command scribe serves the transcription and summary API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/scribe/api"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/storage"
	_ "github.com/kbukum/scribe/storage/local"
	_ "github.com/kbukum/scribe/storage/s3"
	"github.com/kbukum/scribe/summarize"
	"github.com/kbukum/scribe/task"
	"github.com/kbukum/scribe/version"
)

const serviceName = "scribe"

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env")
	flag.Parse()

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "scribe: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Init(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.WithError(err).Warn("telemetry shutdown failed")
		}
	}()
	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	orchestrator := task.NewOrchestrator(task.NewStore(store),
		task.WithAdapterOptions(cfg.adapterOptions()),
		task.WithSummaryOptions(summarize.Options{
			ProxyURL: cfg.Pipeline.ProxyURL,
			Timeout:  cfg.Pipeline.SummaryTimeout,
		}),
		task.WithMetrics(metrics),
		task.WithLogger(log),
	)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	var checkers []observability.HealthChecker
	if hc, ok := store.(observability.HealthChecker); ok {
		checkers = append(checkers, hc)
	}
	srv.RegisterDefaultEndpoints(cfg.Name, cfg.Version, checkers...)
	api.NewHandler(orchestrator, api.Config{
		UploadDir: cfg.Pipeline.UploadDir,
		KeepAlive: cfg.Pipeline.KeepAlive,
	}, log).Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("scribe ready", logger.Fields(
		"addr", srv.Addr(),
		"build", version.Get().String(),
		"environment", cfg.Environment,
		"storage", cfg.Storage.Provider,
	))

	<-ctx.Done()
	log.Info("shutdown signal received")
	return srv.Stop(context.Background(), cfg.Pipeline.ShutdownTimeout)
}

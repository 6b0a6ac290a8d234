// Command acessorios-store serves the /usuarios record API backed by memory
// or SQLite, publishing change events when AMQP is configured.
package main

import (
	"context"
	"errors"
	"os"

	"acessorios/internal/backend"
	"acessorios/internal/cli"
	applog "acessorios/internal/log"
	"acessorios/internal/storeapi"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	srv := storeapi.NewServer(res.Store, logger.WithComponent(applog.ComponentStore)).HTTPServer(":" + cfg.StorePort)
	logger.Info("Starting acessorios store", "port", cfg.StorePort, "backend", backendCfg.Type)

	if err := cli.RunServer(ctx, srv, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Store server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Store stopped gracefully")
}

// Command acessorios serves the accessory dashboard on top of the remote
// record store.
package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"acessorios/internal/app"
	"acessorios/internal/cli"
	apphttp "acessorios/internal/http"
	applog "acessorios/internal/log"
	"acessorios/internal/remote"
	"acessorios/internal/scheduler"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	store := remote.NewClient(cfg.RemoteStoreURL, cfg.RemoteTimeout, logger.WithComponent(applog.ComponentRemote))
	state := app.New(store, logger.WithComponent(applog.ComponentState))

	// A failed first load is not fatal: the page retries and shows a banner.
	if err := state.Refresh(ctx); err != nil {
		logger.Warn("Initial record load failed", applog.FieldError, err, "url", cfg.RemoteStoreURL)
	}

	refresher, err := scheduler.New("refresh", cfg.RefreshSchedule, cfg.RemoteTimeout, state.Refresh, logger.WithComponent(applog.ComponentScheduler))
	if err != nil {
		logger.Error("Failed to configure refresh schedule", applog.FieldError, err)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, state, logger.WithComponent(applog.ComponentHTTP))
	if err != nil {
		logger.Error("Failed to build dashboard server", applog.FieldError, err)
		os.Exit(1)
	}

	refresher.Start(ctx)
	defer refresher.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.RunServer(gctx, &srv.Server, logger)
	})

	logger.Info("Starting acessorios dashboard",
		"port", cfg.Port,
		"remote", cfg.RemoteStoreURL,
		"refresh", cfg.RefreshSchedule)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Dashboard stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Dashboard stopped gracefully")
}

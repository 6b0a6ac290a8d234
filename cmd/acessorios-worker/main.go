// Command acessorios-worker mirrors the record store into Google Sheets,
// driven by AMQP change events and a periodic resync.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"acessorios/internal/amqp"
	"acessorios/internal/cli"
	applog "acessorios/internal/log"
	"acessorios/internal/metrics"
	"acessorios/internal/remote"
	"acessorios/internal/scheduler"
	gsheet "acessorios/internal/sheets/google"
	"acessorios/internal/worker"
)

// resyncSchedule repairs the mirror when events were lost.
const resyncSchedule = "@every 15m"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting acessorios-worker")

	if !cfg.SheetsEnabled() {
		logger.Error("Google Sheets mirror disabled - set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the mirror worker")
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	mirror, err := gsheet.NewMirror(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleServiceAccountFile)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	store := remote.NewClient(cfg.RemoteStoreURL, cfg.RemoteTimeout, nil)
	mw := worker.NewMirrorWorker(store, mirror)

	// Changes made while the worker was down.
	if err := mw.StartupSync(ctx); err != nil {
		logger.Error("Startup sync failed", applog.FieldError, err)
	}

	resync, err := scheduler.New("mirror-resync", resyncSchedule, time.Minute, mw.Resync, nil)
	if err != nil {
		logger.Error("Failed to configure resync schedule", applog.FieldError, err)
		os.Exit(1)
	}
	resync.Start(ctx)
	defer resync.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())
	healthSrv := &http.Server{
		Addr:              ":" + cfg.WorkerPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeRecordEvents(gctx, mw.HandleEvent)
	})
	g.Go(func() error {
		return cli.RunServer(gctx, healthSrv, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

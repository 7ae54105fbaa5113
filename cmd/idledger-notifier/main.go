package main

import (
	"context"
	"errors"
	"time"

	"idledger/internal/amqp"
	"idledger/internal/backend"
	"idledger/internal/cli"
	"idledger/internal/log"
	gsheet "idledger/internal/sheets/google"
	"idledger/internal/storage"
	"idledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg.LogLevel)
	cli.MustValidate(logger, cfg.ValidateNotifier)

	logger.Info("Starting idledger-notifier", log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.DataBackend, "spreadsheet_id", cfg.GoogleSpreadsheetID)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	result, err := backend.NewFactory(logger).CreateBackend(startCtx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize storage backend", err, log.FieldBackend, cfg.DataBackend)
	}
	store := storage.NewAdapter(result.Blobs, logger)

	sheetsClient, err := gsheet.New(startCtx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		_ = store.Close()
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		_ = store.Close()
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}

	mirror := worker.NewMirror(store, sheetsClient, cfg.GoogleSheetName, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", log.FieldError, err)
		}
		if err := store.Close(); err != nil {
			logger.Warn("Storage close failed", log.FieldError, err)
		}
	})

	// Catch up on anything published while the notifier was down.
	logger.Info("Performing startup resync...")
	if err := mirror.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err)
	}

	go mirror.RunResync(ctx, cfg.SyncInterval)

	go func() {
		if err := amqpClient.ConsumeChanges(ctx, mirror.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Change consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}

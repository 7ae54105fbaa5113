package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"idledger/internal/amqp"
	"idledger/internal/backend"
	"idledger/internal/cache"
	"idledger/internal/cli"
	apphttp "idledger/internal/http"
	"idledger/internal/live"
	"idledger/internal/log"
	"idledger/internal/quote"
	"idledger/internal/repository"
	"idledger/internal/services"
	"idledger/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(cfg.LogLevel)
	cli.MustValidate(logger, cfg.Validate)

	logger.Info("Starting idledger", log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.DataBackend, "port", cfg.Port)

	loc, err := cfg.Location()
	if err != nil {
		cli.Fatal(logger, "Invalid timezone", err)
	}

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
	snap, err := store.Open(startCtx)
	if err != nil {
		_ = result.Cleanup()
		cli.Fatal(logger, "Failed to load ledger", err)
	}
	logger.Info("Ledger loaded",
		"categories", len(snap.Categories),
		"records", len(snap.Records),
		"expenses", len(snap.Expenses))

	repo := repository.New(store, snap,
		repository.WithLocation(loc),
		repository.WithLogger(logger))

	// Change fan-out is optional: without a broker the ledger still works.
	var publisher *services.ChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			publisher = services.NewChangePublisher(client, logger)
			publisher.Attach(repo)
			logger.Info("AMQP client initialized - changes will be mirrored by idledger-notifier")
		}
	} else {
		logger.Info("AMQP disabled - changes will not be mirrored")
	}

	provider := quote.NewCoinGecko(cfg.QuoteBaseURL, cfg.QuoteCurrency, logger)
	tracker := quote.NewTracker(provider, cfg.QuoteTTL, logger)

	caches := cache.NewManager(logger)
	caches.Register(tracker.Cache())
	caches.StartCleanup(10 * time.Minute)

	hub := live.NewHub(logger)
	hub.Attach(repo)

	srv := apphttp.NewServer(":"+cfg.Port, repo, tracker, logger,
		apphttp.WithLocation(loc),
		apphttp.WithChangeFeed(hub))

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", log.FieldError, err)
		}
		hub.Close()
		caches.Stop()
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("AMQP close failed", log.FieldError, err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("Storage close failed", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cli.Fatal(logger, "HTTP server failed", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}

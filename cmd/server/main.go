package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "queuedremove/internal/api/http"
	"queuedremove/internal/app"
	"queuedremove/internal/domain"
	"queuedremove/internal/engine/anacrolix"
	"queuedremove/internal/metrics"
	"queuedremove/internal/queue"
	mongorepo "queuedremove/internal/repository/mongo"
	"queuedremove/internal/telemetry"
	"queuedremove/internal/usecase"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "queuedremove")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "queuedremove"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("dataDir", cfg.TorrentDataDir),
		slog.Int64("removeThresholdBytes", cfg.RemoveThresholdBytes),
		slog.Int64("stopThresholdBytes", cfg.StopThresholdBytes),
		slog.Int64("sweepIntervalSeconds", int64(cfg.SweepInterval/time.Second)),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()

	mongoMonitor := otelmongo.NewMonitor()
	mongoClient, err := mongorepo.Connect(ctx, cfg.MongoURI, options.Client().SetMonitor(mongoMonitor))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	queueRepo := mongorepo.NewQueueStateRepository(mongoClient, cfg.MongoDatabase)
	torrentStore := mongorepo.NewTorrentStore(mongoClient, cfg.MongoDatabase)

	host, err := anacrolix.New(anacrolix.Config{DataDir: cfg.TorrentDataDir}, logger)
	if err != nil {
		logger.Error("torrent host init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	manager := queue.NewManager(host, queueRepo, logger)
	manager.SetDefaults(domain.QueueConfig{
		RemoveThresholdBytes: cfg.RemoveThresholdBytes,
		StopThresholdBytes:   cfg.StopThresholdBytes,
	})

	// Re-register stored torrents with the host, then load the persisted
	// queue so it is pruned against the restored torrent set.
	restoreTorrents(ctx, host, torrentStore, logger)
	if err := manager.Load(ctx); err != nil {
		logger.Error("queue state load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Any removal, whoever triggered it, dequeues the torrent and drops its
	// stored record.
	host.OnTorrentRemoved(func(id domain.TorrentID) {
		storeCtx, storeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer storeCancel()
		if err := torrentStore.Delete(storeCtx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("torrent record delete failed",
				slog.String("torrentId", string(id)),
				slog.String("error", err.Error()),
			)
		}
		manager.HandleTorrentRemoved(id)
	})

	addUC := usecase.AddTorrent{Host: host, Store: torrentStore}
	listUC := usecase.ListTorrents{Store: torrentStore}
	deleteUC := usecase.DeleteTorrent{Host: host, Store: torrentStore}

	handler := apihttp.NewServer(manager,
		apihttp.WithLogger(logger),
		apihttp.WithAddTorrent(addUC),
		apihttp.WithListTorrents(listUC),
		apihttp.WithDeleteTorrent(deleteUC),
	)

	manager.OnChange(func(snapshot domain.QueueSnapshot) {
		metrics.QueueGroups.Set(float64(len(snapshot.Groups)))
		metrics.QueueTorrents.Set(float64(len(snapshot.Ranks)))
		handler.BroadcastQueue(snapshot)
	})

	sweeper := &queue.Sweeper{
		Manager:  manager,
		Logger:   logger,
		Interval: cfg.SweepInterval,
	}
	go sweeper.Run(rootCtx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	handler.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := host.Close(); err != nil {
		logger.Warn("torrent host close error", slog.String("error", err.Error()))
	}
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func restoreTorrents(ctx context.Context, host *anacrolix.Host, store *mongorepo.TorrentStore, logger *slog.Logger) {
	records, err := store.List(ctx)
	if err != nil {
		logger.Warn("restore: list failed", slog.String("error", err.Error()))
		return
	}
	if len(records) == 0 {
		return
	}

	logger.Info("restoring torrents", slog.Int("count", len(records)))

	for _, rec := range records {
		if strings.TrimSpace(rec.Magnet) == "" {
			logger.Warn("restore: no source", slog.String("id", string(rec.ID)))
			continue
		}
		if _, err := host.Add(ctx, rec.Magnet); err != nil {
			logger.Warn("restore: add failed", slog.String("id", string(rec.ID)), slog.String("error", err.Error()))
			continue
		}
		logger.Info("restored torrent", slog.String("id", string(rec.ID)), slog.String("name", rec.Name))
	}
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package app wires configuration, storage, the event bus, services, and
// the HTTP server into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/campusfind/lostfound-backend/internal/adapter/postgres"
	"github.com/campusfind/lostfound-backend/internal/adapter/postgres/feedback"
	"github.com/campusfind/lostfound-backend/internal/adapter/postgres/item"
	"github.com/campusfind/lostfound-backend/internal/adapter/postgres/matchrecord"
	"github.com/campusfind/lostfound-backend/internal/adapter/provider/amap"
	"github.com/campusfind/lostfound-backend/internal/adapter/rabbit"
	"github.com/campusfind/lostfound-backend/internal/auth"
	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/push"
	"github.com/campusfind/lostfound-backend/internal/service/location"
	matchsvc "github.com/campusfind/lostfound-backend/internal/service/match"
	"github.com/campusfind/lostfound-backend/internal/transport/middleware"
	"github.com/campusfind/lostfound-backend/internal/transport/rest"
	"github.com/campusfind/lostfound-backend/internal/worker"
)

// eventBus abstracts the real bus and the log-only stand-in used when the
// bus is disabled by configuration.
type eventBus interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// Run is the application entry point: it builds the full dependency graph
// and serves HTTP until ctx is cancelled, then shuts down in reverse order.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting lostfound backend",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	itemRepo := item.New(pool)
	matchRepo := matchrecord.New(pool)
	feedbackRepo := feedback.New(pool)
	txManager := postgres.NewTxManager(pool)

	workers := worker.New(cfg.Worker.Count, cfg.Worker.QueueSize, logger)
	workers.Start(ctx)
	defer workers.Stop()

	pushRegistry := push.NewRegistry(logger)
	defer pushRegistry.Shutdown()

	// The bus is optional: without a URL, events are logged and dropped and
	// no background scans run.
	var bus eventBus
	var rabbitBus *rabbit.Bus
	if cfg.Rabbit.URL != "" {
		rabbitBus, err = rabbit.NewBus(cfg.Rabbit, logger)
		if err != nil {
			return fmt.Errorf("connect to event bus: %w", err)
		}
		defer rabbitBus.Close()
		bus = rabbitBus
	} else {
		logger.Warn("event bus disabled, RABBIT_URL not set")
		bus = rabbit.NewNopBus(logger)
	}

	geocoder := amap.NewProvider(cfg.Geocoder, logger)
	locationService := location.New(geocoder, itemRepo, cfg.Geocoder.RequestTimeout, logger)
	matchService := matchsvc.New(itemRepo, matchRepo, feedbackRepo, txManager,
		bus, pushRegistry, workers, cfg.Matching, logger)

	if rabbitBus != nil {
		consumer, err := rabbit.NewConsumer(rabbitBus, cfg.Rabbit, matchService, workers, logger)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		defer consumer.Close()
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("start consumer: %w", err)
		}
	}

	matchHandler := rest.NewMatchHandler(matchService, logger)
	locationHandler := rest.NewLocationHandler(locationService, logger)

	healthHandler := rest.NewHealthHandler(pool, nil, BuildVersion())
	if rabbitBus != nil {
		healthHandler = rest.NewHealthHandler(pool, rabbitBus, BuildVersion())
	}

	router := rest.NewRouter(matchHandler, locationHandler, healthHandler)
	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Auth(auth.NewVerifier(cfg.Auth)),
	)(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("stopped")

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	sfhttp "github.com/Strob0t/SiteForge/internal/adapter/http"
	sfnats "github.com/Strob0t/SiteForge/internal/adapter/nats"
	sfotel "github.com/Strob0t/SiteForge/internal/adapter/otel"
	"github.com/Strob0t/SiteForge/internal/adapter/postgres"
	"github.com/Strob0t/SiteForge/internal/adapter/ristretto"
	"github.com/Strob0t/SiteForge/internal/adapter/ws"
	"github.com/Strob0t/SiteForge/internal/config"
	"github.com/Strob0t/SiteForge/internal/domain/template"
	"github.com/Strob0t/SiteForge/internal/logger"
	"github.com/Strob0t/SiteForge/internal/middleware"
	"github.com/Strob0t/SiteForge/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	otelShutdown, err := sfotel.Init(ctx, cfg.Logging.Service, cfg.OTel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := sfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	// Run migrations
	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS
	queue, err := sfnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	// View cache
	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// Template catalog
	catalog, err := template.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	slog.Info("template catalog loaded", "templates", catalog.Len())

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	events := postgres.NewEventStore(pool)

	viewSvc := service.NewViewService(store, cache, cfg.Cache.ViewTTL)
	viewSvc.SetMetrics(metrics)

	generationSvc := service.NewGenerationService(store, events, queue, hub, catalog)
	generationSvc.SetMetrics(metrics)
	generationSvc.SetInvalidator(viewSvc)

	lifecycleSvc := service.NewLifecycleService(store, events, queue, hub)
	lifecycleSvc.SetMetrics(metrics)
	lifecycleSvc.SetInvalidator(viewSvc)

	boqSvc := service.NewBOQService(store, queue, hub)
	boqSvc.SetInvalidator(viewSvc)

	handlers := &sfhttp.Handlers{
		Generation: generationSvc,
		Lifecycle:  lifecycleSvc,
		Field:      service.NewFieldService(lifecycleSvc),
		Views:      viewSvc,
		Activity:   service.NewActivityService(events),
		BOQ:        boqSvc,
	}

	// --- HTTP ---
	r := chi.NewRouter()

	// Middleware
	r.Use(sfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(sfhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.Actor)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(sfotel.HTTPMiddleware(cfg.Logging.Service))

	// Health endpoint with service status
	r.Get("/health", healthHandler(queue))

	// WebSocket endpoint
	r.Get("/ws", hub.HandleWS)

	// API routes
	sfhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := queue.Drain(); err != nil {
			slog.Warn("nats drain failed", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(queue *sfnats.Queue) http.HandlerFunc {
	type healthStatus struct {
		Status string `json:"status"`
		NATS   bool   `json:"nats"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status: "ok",
			NATS:   queue.IsConnected(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/middleware"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/pkg/router"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/db"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/config"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/events"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/ocr"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/photo"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/prefs"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/region"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/render"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/rest"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/service"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/store"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run(ctx context.Context) error {
	slog.Info("starting plates service")

	cfg := config.FromEnv()
	sqlDB, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(sqlDB); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	themes := prefs.NewRedisStore(prefs.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer themes.Close()

	if err := themes.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate preferences: %w", err)
	}

	reader, err := region.NewKagomeReader()
	if err != nil {
		return fmt.Errorf("failed to load reading dictionary: %w", err)
	}
	catalog, err := region.Load(reader)
	if err != nil {
		return fmt.Errorf("failed to load region catalog: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []service.PlatesOption{
		service.WithStore(store.NewPostgresStore(sqlDB)),
		service.WithCatalog(catalog),
		service.WithRenderer(render.NewCache(cfg.Render.CacheBytes)),
		service.WithRarity(service.RarityConfig{
			DefaultTier:   cfg.Rarity.DefaultTier,
			DefaultPoints: cfg.Rarity.DefaultPoints,
			CacheKeys:     cfg.Rarity.CacheKeys,
			CacheCost:     cfg.Rarity.CacheCost,
			CacheTTL:      cfg.Rarity.CacheTTL,
		}),
		service.WithExcludedPrefectures(cfg.ExcludedPrefectures...),
		service.WithSearchLimit(cfg.Search.Limit),
	}

	if cfg.AMQP.URL != "" {
		pub := events.NewAMQPPublisher(cfg.AMQP.URL)
		defer pub.Close()
		opts = append(opts, service.WithEvents(pub))
	}
	if cfg.Photo.Endpoint != "" {
		opts = append(opts, service.WithPhotos(photo.NewRemoteStore(cfg.Photo.Endpoint, cfg.Photo.FieldName, cfg.Photo.FileName, cfg.Photo.Timeout)))
	}
	if cfg.OCR.Endpoint != "" {
		opts = append(opts, service.WithRecognizer(ocr.NewRemoteRecognizer(cfg.OCR.Endpoint, cfg.OCR.Timeout)))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, service.WithMetrics(service.NewPromMetrics(reg, cfg.Metrics.Namespace)))
	}

	srv := service.NewPlates(opts...)
	defer srv.Close()

	r := router.New()
	r.Use(middleware.Recover(), middleware.Log())
	if cfg.Metrics.Enabled {
		r.Use(middleware.NewHTTPMetrics(reg, cfg.Metrics.Namespace).Middleware())
		r.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}
	r.Use(middleware.Compress())

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			slog.Warn("db is not ready", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if err := themes.Ping(r.Context()); err != nil {
			slog.Warn("redis is not ready", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	api := r.SubRouter("/api/v1/")
	api.Use(middleware.Auth([]byte(cfg.AuthSecret)))
	api.Handle("/", rest.NewAPI(
		rest.WithPlatesService(srv),
		rest.WithThemeStore(themes),
		rest.WithMaxUploadSize(cfg.HTTP.MaxUploadSize),
		rest.WithThemeLocation(cfg.Theme.Location),
	))

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Handler:      r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("plates service terminated with error", "error", err)
		os.Exit(1)
	}
}

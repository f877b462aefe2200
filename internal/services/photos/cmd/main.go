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
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/photos/internal/config"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/photos/internal/rest"
	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/photos/internal/service"
	"github.com/joho/godotenv"
)

func run(ctx context.Context) error {
	slog.Info("starting photos service")

	cfg := config.FromEnv()
	photos, err := service.NewPhotos(service.Config{
		ServeRoot: cfg.Store.ServeRoot,
		Root:      cfg.Store.Root,
		MaxWidth:  cfg.Store.MaxWidth,
		MaxHeight: cfg.Store.MaxHeight,
	})
	if err != nil {
		return fmt.Errorf("failed to open photo store: %w", err)
	}

	r := router.New()
	r.Use(middleware.Recover(), middleware.Log())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(cfg.Store.Root); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Uploads come from the plates service inside the cluster; the gateway
	// only exposes GET /image/.
	r.Handle("/", rest.NewAPI(
		rest.WithPhotoStore(photos),
		rest.WithMaxPhotoSize(cfg.Store.MaxSize),
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
		slog.Error("photos service exited with error", "error", err)
		os.Exit(1)
	}
}

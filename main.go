// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/daily-pick/cliparse"
	"github.com/danielhkuo/daily-pick/db"
	"github.com/danielhkuo/daily-pick/hub"
	"github.com/danielhkuo/daily-pick/logging"
	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/poll"
	"github.com/danielhkuo/daily-pick/router"
	"github.com/danielhkuo/daily-pick/store"
	"github.com/danielhkuo/daily-pick/store/boltstore"
	"github.com/danielhkuo/daily-pick/store/filestore"
	"github.com/danielhkuo/daily-pick/store/sqlstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("Error configuring logging", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("storage initialization failed", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	slog.Info("Storage ready", "store", cfg.Store, "timezone", cfg.Location.String())

	st := store.New(backend, store.Options{
		Location: cfg.Location,
		Timeout:  cfg.StorageTimeout,
	})
	svc := poll.New(st, hub.New())
	defer svc.Close()

	// Create today's document up front so storage problems surface at startup
	if _, err := st.Load(ctx); err != nil {
		slog.Error("failed to load current vote document", "error", err)
		os.Exit(1)
	}

	mux := router.NewRouter(svc, cfg)
	handler := middleware.RequireOrigin(middleware.WithVoter(mux), cfg.AllowedOrigins)

	server := http.Server{
		Handler:           middleware.CORS(handler, cfg.AllowedOrigins),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

func openBackend(ctx context.Context, cfg cliparse.Config) (store.Backend, error) {
	switch cfg.Store {
	case cliparse.StoreFile:
		return filestore.Open(cfg.DataDir)
	case cliparse.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0o755); err != nil {
			return nil, err
		}
		return sqlstore.Open(ctx, db.DialectSQLite, cfg.DatabaseURL)
	case cliparse.StorePostgres:
		return sqlstore.Open(ctx, db.DialectPostgres, cfg.DatabaseURL)
	case cliparse.StoreBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0o755); err != nil {
			return nil, err
		}
		return boltstore.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

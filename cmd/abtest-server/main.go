// Command abtest-server runs the assignment backend.
//
// It serves the assignment read/write API the client engine speaks, the
// experiment definition API, and success event intake, backed by SQLite.
//
// Usage:
//
//	abtest-server [-config config.yaml]
//
// Configuration comes from the optional YAML file layered under environment
// variables (ABTEST_ADDR, ABTEST_DB_PATH, ...).
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DenisMSouza/abtest-sub000/internal/logging"
	"github.com/DenisMSouza/abtest-sub000/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewSlogDefault()
	logger.Info("starting abtest backend",
		"addr", cfg.Addr, "db", cfg.DatabasePath, "metrics", cfg.MetricsAddr)

	store, err := server.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	if cfg.Debug {
		e.Use(middleware.Logger())
	}

	server.NewHandler(store, logger).RegisterRoutes(e)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	go func() {
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

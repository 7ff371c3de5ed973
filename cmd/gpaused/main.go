package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/planbiir/gpause/internal/config"
	"github.com/planbiir/gpause/internal/logging"
	"github.com/planbiir/gpause/internal/pause"
	"github.com/planbiir/gpause/internal/server"
	"github.com/planbiir/gpause/internal/service"
	"github.com/planbiir/gpause/internal/store"
)

func main() {
	configFile := flag.String("config", "", "Config file (default: gpause.yaml in . or ./configs)")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.New(os.Stderr, "info", "text").Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	detector, err := pause.NewDetector(cfg.Detection, logger)
	if err != nil {
		logger.Fatalf("Invalid detection config: %v", err)
	}
	analyzer := service.NewAnalyzer(detector, logger)

	var st server.Store
	if cfg.Store.Path != "" {
		s, err := store.Open(context.Background(), cfg.Store.Path)
		if err != nil {
			logger.Fatalf("Failed to open store: %v", err)
		}
		defer s.Close()
		st = s
		logger.WithField("path", cfg.Store.Path).Info("Store opened")
	} else {
		logger.Warn("No store path configured, analyses will not be persisted")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(analyzer, st, logger, cfg.Server.MaxUploadMB).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("addr", srv.Addr).Info("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.WithField("signal", sig.String()).Info("Shutdown signal received, draining connections")

	// Give in-flight requests up to 10s to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	logger.Info("Server stopped")
}

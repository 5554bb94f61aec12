package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/config"
	"mail-beacon-go/internal/db"
	"mail-beacon-go/internal/handler"
	"mail-beacon-go/internal/metrics"
	"mail-beacon-go/internal/repository"
	"mail-beacon-go/internal/router"
	"mail-beacon-go/internal/service"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Mail Beacon Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()

	messages := repository.NewMessages(dbConn)
	ads := repository.NewAds(dbConn)

	threads := service.NewThreads(messages)
	recorder := service.NewOpenRecorder(messages, service.SystemClock(),
		cfg.Tracking.SessionWindow, cfg.Tracking.SenderGrace, m)
	allocator := service.NewAdAllocator(ads, m, cfg.Ads.FallbackImageURL)
	stats := service.NewStatsRefresher(&cfg.Stats, repository.NewStats(dbConn), m)

	h := handler.NewHandlers(dbConn, messages, ads, threads, recorder, allocator, stats, m, cfg.Tracking)
	r := router.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := stats.Start(); err != nil {
		return fmt.Errorf("failed to start stats refresher: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := stats.Stop(); err != nil {
		logrus.Errorf("Failed to stop stats refresher: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

// Package main provides the API server entry point for the ecosystem hub.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecosystem-hub/internal/adapter"
	"github.com/ecosystem-hub/internal/api"
	"github.com/ecosystem-hub/internal/config"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/service"
	"github.com/ecosystem-hub/internal/storage"
	"github.com/ecosystem-hub/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Ecosystem Hub API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Open the key-value store; falls back to memory when unreachable
	store := storage.Open(cfg, logger)
	logger.WithFields(map[string]interface{}{
		"backend": cfg.Store.Backend,
		"durable": store.Durable(),
	}).Info("Store opened")

	hubConfig := service.HubConfig{
		WriteBuffer:  cfg.Store.WriteBuffer,
		RefreshDelay: cfg.Wallet.RefreshDelay,
	}

	// Activity ledger is optional
	var ledger *storage.ActivityLedger
	if cfg.Database.ClickHouse.Enabled {
		ledger, err = storage.NewActivityLedger(&cfg.Database.ClickHouse)
		if err != nil {
			logger.WithError(err).Warn("Activity ledger unavailable, awards will not be recorded")
		} else {
			hubConfig.Recorder = ledger
			logger.Info("Activity ledger connected")
		}
	}

	marketClient := adapter.NewMarketClient(&cfg.Market, logger)

	hub := service.NewHub(store, marketClient, hubConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub.Load(ctx)
	if hub.Launch().FirstLaunch(ctx) {
		logger.Info("First launch on this store")
	}

	marketWorker, err := worker.NewMarketWorker(&worker.MarketWorkerConfig{
		Market:     hub.Market(),
		Schedule:   cfg.Market.RefreshSchedule,
		Timeout:    cfg.Market.Timeout,
		RunOnStart: true,
		Logger:     logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Invalid market refresh schedule")
	}
	if err := marketWorker.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start market worker")
	}

	serverConfig := &api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.RequestsPerSecond * 2,
	}

	server := api.NewServer(serverConfig, hub, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := marketWorker.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Market worker did not stop cleanly")
	}

	// drains pending writes before the backend closes
	if err := hub.Close(shutdownCtx); err != nil {
		logger.WithError(err).Error("Pending writes were not flushed")
	}
	if ledger != nil {
		if err := ledger.Close(); err != nil {
			logger.WithError(err).Warn("Error closing activity ledger")
		}
	}

	logger.Info("Server exited")
}

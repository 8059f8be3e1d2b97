// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/service"
	"github.com/gorilla/mux"
)

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	hub        *service.Hub
	metrics    *Metrics
	logger     *logging.Logger
	config     *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestsPerSecond int
	Burst             int
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, hub *service.Hub, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router:  mux.NewRouter(),
		hub:     hub,
		metrics: NewMetrics("ecosystem_hub"),
		logger:  logger.WithComponent("api"),
		config:  config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// order matters: metrics and logging see the final status
	s.router.Use(MetricsMiddleware(s.metrics))
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Launch and cache
	api.HandleFunc("/launch", s.handleGetLaunch).Methods("GET")
	api.HandleFunc("/launch", s.handleFirstLaunch).Methods("POST")
	api.HandleFunc("/cache/clear", s.handleClearCache).Methods("POST")

	// Settings
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods("PUT")
	api.HandleFunc("/settings/languages", s.handleGetLanguages).Methods("GET")
	api.HandleFunc("/settings/password", s.handleSetPassword).Methods("PUT")
	api.HandleFunc("/settings/password/verify", s.handleVerifyPassword).Methods("POST")

	// Points
	api.HandleFunc("/points", s.handleGetPoints).Methods("GET")
	api.HandleFunc("/points", s.handleAddPoints).Methods("POST")
	api.HandleFunc("/points/totals", s.handleGetAwardTotals).Methods("GET")

	// Wallet
	api.HandleFunc("/wallet", s.handleGetWallet).Methods("GET")
	api.HandleFunc("/wallet", s.handleCreateWallet).Methods("POST")
	api.HandleFunc("/wallet", s.handleDeleteWallet).Methods("DELETE")
	api.HandleFunc("/wallet/import", s.handleImportWallet).Methods("POST")
	api.HandleFunc("/wallet/refresh", s.handleRefreshWallet).Methods("POST")
	api.HandleFunc("/wallet/send", s.handleSend).Methods("POST")

	// Browser
	api.HandleFunc("/browser/tabs", s.handleGetTabs).Methods("GET")
	api.HandleFunc("/browser/tabs", s.handleAddTab).Methods("POST")
	api.HandleFunc("/browser/tabs/{id}", s.handleCloseTab).Methods("DELETE")
	api.HandleFunc("/browser/tabs/{id}/activate", s.handleActivateTab).Methods("POST")
	api.HandleFunc("/browser/navigate", s.handleNavigate).Methods("POST")
	api.HandleFunc("/browser/visits", s.handleRecordVisit).Methods("POST")
	api.HandleFunc("/browser/bookmarks", s.handleGetBookmarks).Methods("GET")
	api.HandleFunc("/browser/bookmarks", s.handleToggleBookmark).Methods("POST")
	api.HandleFunc("/browser/bookmarks", s.handleRemoveBookmark).Methods("DELETE")
	api.HandleFunc("/browser/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/browser/history", s.handleClearHistory).Methods("DELETE")
	api.HandleFunc("/browser/quicklinks", s.handleGetQuickLinks).Methods("GET")

	// Market and dApps
	api.HandleFunc("/market", s.handleGetMarket).Methods("GET")
	api.HandleFunc("/market/refresh", s.handleRefreshMarket).Methods("POST")
	api.HandleFunc("/dapps", s.handleGetDApps).Methods("GET")
	api.HandleFunc("/dapps/visit", s.handleVisitDApp).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "healthy",
		"service": "ecosystem-hub",
		"durable": s.hub.Durable(),
	}
	if health, ok := s.hub.Market().ProviderHealth(); ok {
		body["market"] = health
	}
	respondJSON(w, http.StatusOK, body)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

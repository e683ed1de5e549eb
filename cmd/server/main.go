package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spportal/application"
	"spportal/database"
	"spportal/domain/contracts"
	"spportal/infrastructure/config"
	"spportal/infrastructure/repositories"
	"spportal/infrastructure/spclient"
	"spportal/interfaces/web/handlers"
	"spportal/interfaces/web/presenters"
	"spportal/logging"
	platformevents "spportal/platform/events"
	"spportal/spauth"
)

func main() {
	// Create app-wide context for startup probing and shutdown
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Initialize configuration
	loadEnvironment()
	cfg := config.LoadAppConfigFromEnv()

	// Initialize logging
	logger := initializeLogging(cfg)

	// Initialize database
	db := initializeDatabase(cfg, logger)
	defer db.Close()

	// Build dependencies; the portal client probes the portal here
	deps := buildDependencies(appCtx, cfg, db, logger)

	// Start background workers
	startBackgroundServices(appCtx, deps)

	// Setup routes and start server
	router := setupRoutes(deps, cfg)
	startServer(router, cfg.HTTPAddr, logger, appCancel, deps.EventBus.Wait)
}

// Dependencies holds all application dependencies organized by layer
type Dependencies struct {
	// Infrastructure
	DB       *database.Database
	Logger   *logging.Logger
	Registry *prometheus.Registry

	// Repositories
	ProbeHistory contracts.ProbeHistoryRepository

	// Platform
	EventBus *platformevents.ProbeEventBus

	// Application Layer
	Client       *application.PortalClient
	Availability *application.AvailabilityService
	Monitor      *application.ProbeMonitor

	// Presentation Layer
	PortalHandlers *handlers.PortalHandlers
	SSEManager     *handlers.SSEManager
}

func loadEnvironment() {
	if err := godotenv.Load(); err != nil {
		println("No .env file found, using environment variables")
	} else {
		println("Loaded configuration from .env file")
	}
}

func initializeLogging(cfg *config.AppConfig) *logging.Logger {
	logger := logging.NewLogger(cfg.Logging)
	logging.SetDefault(logger)

	logger.Info("Application starting",
		"version", "1.0.0",
		"log_level", cfg.Logging.Level,
		"log_format", cfg.Logging.Format,
		"db_path", cfg.Database.Path,
	)

	return logger
}

func initializeDatabase(cfg *config.AppConfig, logger *logging.Logger) *database.Database {
	db, err := database.New(*cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	return db
}

// initializePortalClient authenticates, wires the transport and probes the portal.
// A failed probe is fatal: the server never runs without a ready client.
func initializePortalClient(ctx context.Context, registry *prometheus.Registry, logger *logging.Logger) *application.PortalClient {
	authCfg, err := spauth.FromEnv()
	if err != nil {
		logger.Error("Invalid SharePoint configuration", "error", err)
		os.Exit(1)
	}
	logger.Security("SharePoint authentication configured", "strategy", authCfg.Strategy, "site_url", authCfg.SiteURL)

	authClient, err := spauth.NewClient(authCfg)
	if err != nil {
		logger.Error("Failed to create SharePoint client", "error", err)
		os.Exit(1)
	}

	var transport contracts.PortalTransport = spclient.NewPortalTransport(authClient)
	if registry != nil {
		metrics, err := spclient.NewTransportMetrics(registry)
		if err != nil {
			logger.Error("Failed to register transport metrics", "error", err)
			os.Exit(1)
		}
		transport = spclient.Instrument(transport, metrics)
	}

	client, err := application.NewPortalClient(ctx, authCfg.SiteURL, transport)
	if err != nil {
		logger.Error("Portal is not available", "error", err, "site_url", authCfg.SiteURL)
		os.Exit(1)
	}
	return client
}

// buildDependencies creates all application dependencies
func buildDependencies(appCtx context.Context, cfg *config.AppConfig, db *database.Database, logger *logging.Logger) *Dependencies {
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	probeHistory := repositories.NewProbeHistoryRepository(db)
	client := initializePortalClient(appCtx, registry, logger)

	// Probe events fan out to live SSE clients
	eventBus := platformevents.NewProbeEventBus()
	sseManager := handlers.NewSSEManager()
	platformevents.NewNotificationEventHandlers(sseManager).RegisterHandlers(eventBus)

	availability := application.NewAvailabilityService(client, probeHistory).WithPublisher(eventBus)
	monitor := application.NewProbeMonitor(availability, cfg.ProbeInterval).WithRetention(cfg.HistoryRetention)

	portalHandlers := handlers.NewPortalHandlers(
		client,
		availability,
		db,
		presenters.NewPortalPresenter(),
		cfg.HistoryLimit,
	)

	return &Dependencies{
		DB:             db,
		Logger:         logger,
		Registry:       registry,
		ProbeHistory:   probeHistory,
		EventBus:       eventBus,
		Client:         client,
		Availability:   availability,
		Monitor:        monitor,
		PortalHandlers: portalHandlers,
		SSEManager:     sseManager,
	}
}

func startBackgroundServices(ctx context.Context, deps *Dependencies) {
	go deps.SSEManager.Run(ctx)
	go deps.Monitor.Run(ctx)
}

func setupRoutes(deps *Dependencies, cfg *config.AppConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	setupHTTPLogging(r, deps, cfg)
	r.Use(middleware.Recoverer)

	// System endpoints
	setupSystemRoutes(r, deps, cfg)

	// Portal routes
	setupPortalRoutes(r, deps)

	return r
}

func setupHTTPLogging(r *chi.Mux, deps *Dependencies, cfg *config.AppConfig) {
	if cfg.HTTPLogPath == "" {
		// No HTTP logging configured, skip
		return
	}

	logFile, err := os.OpenFile(cfg.HTTPLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		deps.Logger.Error("Failed to open HTTP log file", "error", err, "path", cfg.HTTPLogPath)
		return
	}
	// Note: logFile is not closed here as it needs to stay open for the server lifetime

	httpLogger := httplog.NewLogger("spportal", httplog.Options{
		Writer: logFile,
		JSON:   true,
	})
	r.Use(httplog.RequestLogger(httpLogger))

	deps.Logger.Info("HTTP request logging enabled", "path", cfg.HTTPLogPath)
}

func setupSystemRoutes(r *chi.Mux, deps *Dependencies, cfg *config.AppConfig) {
	r.Get("/health", deps.PortalHandlers.Health)
	r.Get("/health/history", deps.PortalHandlers.History)
	r.Get("/health/stream", deps.SSEManager.HandleSSEConnection)

	if deps.Registry != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
}

func setupPortalRoutes(r *chi.Mux, deps *Dependencies) {
	// Main page
	r.Get("/", deps.PortalHandlers.Overview)

	// JSON API
	r.Get("/api/lists", deps.PortalHandlers.Lists)
	r.Get("/api/lists/{title}/rows", deps.PortalHandlers.Rows)
	r.Get("/api/me", deps.PortalHandlers.CurrentUser)
}

// startServer serves until a shutdown signal, then runs shutdown.
func startServer(router *chi.Mux, addr string, logger *logging.Logger, appCancel context.CancelFunc, drain func()) {
	server := &http.Server{Addr: addr, Handler: router}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sig
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				logger.Error("Graceful shutdown timed out, forcing exit")
				os.Exit(1)
			}
		}()

		if err := shutdown(shutdownCtx, server, appCancel, drain); err != nil {
			logger.Error("Server shutdown error", "error", err)
			os.Exit(1)
		}
		serverStopCtx()
	}()

	logger.Info("Server starting", "address", addr)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-serverCtx.Done()
	logger.Info("Server stopped")
}

// shutdown cancels background work, drains the HTTP server and then waits for
// in-flight event handlers, so no notification is sent after it returns.
func shutdown(ctx context.Context, server *http.Server, appCancel context.CancelFunc, drain func()) error {
	appCancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	drain()
	return nil
}

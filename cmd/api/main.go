package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/inkwell-app/inkwell-api/internal/auth"
	"github.com/inkwell-app/inkwell-api/internal/config"
	"github.com/inkwell-app/inkwell-api/internal/handlers"
	middlewareCustom "github.com/inkwell-app/inkwell-api/internal/middleware"
	"github.com/inkwell-app/inkwell-api/internal/repositories"
	"github.com/inkwell-app/inkwell-api/internal/routes"
	"github.com/inkwell-app/inkwell-api/internal/services"
	"github.com/inkwell-app/inkwell-api/internal/store"
	pkglogger "github.com/inkwell-app/inkwell-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := pkglogger.New(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Connect to the document store
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.NewMongoStore(connectCtx, store.MongoConfig{
		URI:       cfg.Store.URI,
		Database:  cfg.Store.Database,
		OpTimeout: cfg.Store.OpTimeout,
	})
	connectCancel()
	if err != nil {
		logger.Error("failed to connect to store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close(context.Background())

	// Initialize repositories
	userRepo := repositories.NewUserRepository(st)
	auditRepo := repositories.NewAuditLogRepository(st)
	backupRepo := repositories.NewBackupRepository(st)
	configRepo := repositories.NewSystemConfigRepository(st)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Initialize services
	auditService := services.NewAuditService(auditRepo, logger)
	statsService := services.NewStatsService(userRepo, logger)
	directoryService := services.NewDirectoryService(userRepo, configRepo, backupRepo, statsService, auditService, logger)

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(directoryService)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, adminHandler, tokenManager)

	// Health check with store ping
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","store":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","store":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

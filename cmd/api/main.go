package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/ticket-board/internal/adapters/primary/http"
	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-board/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/graphql"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/toast"
	"github.com/lorrc/ticket-board/internal/auth"
	"github.com/lorrc/ticket-board/internal/config"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Database Pool and Migrations
	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied", "path", cfg.Database.MigrationsPath)
	}

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 5. Initialize Rate Limiters
	var generalRateLimiter, mutationRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		general := mw.DefaultRateLimiterConfig()
		general.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		general.BurstSize = cfg.RateLimit.BurstSize
		generalRateLimiter = mw.NewRateLimiter(ctx, general)

		mutation := mw.MutationRateLimiterConfig()
		mutation.RequestsPerSecond = cfg.RateLimit.MutationRPS
		mutation.BurstSize = cfg.RateLimit.MutationBurst
		mutationRateLimiter = mw.NewRateLimiter(ctx, mutation)
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	policy, err := services.ParseReconcilePolicy(cfg.Board.ReconcilePolicy)
	if err != nil {
		logger.Error("invalid reconcile policy", "error", err)
		os.Exit(1)
	}

	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Secondary adapters
	gqlClient := graphql.NewClient(graphql.Config{
		URL:     cfg.GraphQL.URL,
		Timeout: cfg.GraphQL.Timeout,
	}, logger)
	activityRepo := postgres.NewActivityRepository(pool)
	notifier := toast.NewNotifier(hub, logger)

	// Services (Core)
	activityService := services.NewActivityService(activityRepo)
	registry := services.NewBoardRegistry(services.BoardDeps{
		Tickets:     gqlClient,
		Directory:   gqlClient,
		Notifier:    notifier,
		Broadcaster: hub,
		Journal:     activityRepo,
		Logger:      logger,
	}, services.RegistryConfig{
		Board: services.BoardOptions{
			Policy:           policy,
			PreserveAssignee: cfg.Board.PreserveAssignee,
		},
		IdleTTL:         cfg.Board.IdleTTL,
		CleanupInterval: cfg.Board.CleanupInterval,
	})
	defer registry.Shutdown()

	go pruneActivity(ctx, activityService, cfg.Database, logger)

	// Handlers (Primary Adapters)
	boardHandler := httpAdapter.NewBoardHandler(registry, activityService, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(cfg.App.Version, map[string]ports.HealthChecker{
		"database": activityRepo,
		"graphql":  gqlClient,
	}, registry)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger, "/health/live", "/health/ready"))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)

	var mutationMiddlewares []func(http.Handler) http.Handler
	if mutationRateLimiter != nil {
		mutationMiddlewares = append(mutationMiddlewares, mutationRateLimiter.PerUser)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Protected REST routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Use(mw.RequireAnyRole(cfg.JWT.AllowedRoles...))
			r.Route("/board", func(r chi.Router) {
				boardHandler.RegisterRoutes(r, mutationMiddlewares...)
			})
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server shutdown complete")
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func runMigrations(path, databaseURL string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	mig, err := migrate.New("file://"+absPath, databaseURL)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// pruneActivity trims the journal to the retention window until ctx ends.
func pruneActivity(ctx context.Context, activity ports.ActivityService, cfg config.DatabaseConfig, logger *slog.Logger) {
	if cfg.ActivityRetention <= 0 || cfg.PruneInterval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := activity.Prune(ctx, cfg.ActivityRetention)
			if err != nil {
				logger.ErrorContext(ctx, "failed to prune activity journal", "error", err)
				continue
			}
			if removed > 0 {
				logger.InfoContext(ctx, "pruned activity journal", "removed", removed)
			}
		}
	}
}

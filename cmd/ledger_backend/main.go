package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/nonprofit_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/nonprofit_ledger/internal/core/services"
	"github.com/SscSPs/nonprofit_ledger/internal/handlers"
	"github.com/SscSPs/nonprofit_ledger/internal/middleware"
	"github.com/SscSPs/nonprofit_ledger/internal/platform/config"
	"github.com/SscSPs/nonprofit_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/nonprofit_ledger/internal/repositories/memory"
	"github.com/SscSPs/nonprofit_ledger/internal/utils"
	"github.com/SscSPs/nonprofit_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Nonprofit Ledger API
// @version 1.0
// @description Double-entry general ledger for nonprofit organizations.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var repos repositories.RepositoryProvider
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		repos = memory.New().Provider()
	default:
		dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool, logger)

		if err := runMigrations(cfg, logger); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	serviceContainer := services.NewServiceContainer(cfg, repos)

	rate, err := limiter.NewRateFromFormatted(cfg.WebhookRateLimit)
	if err != nil {
		logger.Error("Invalid WEBHOOK_RATE_LIMIT", slog.String("value", cfg.WebhookRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	webhookLimiter := limiter.New(memorystore.NewStore(), rate)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, webhookLimiter, posthogClient)

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies every pending up migration from cfg.MigrationsPath.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))

	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		return errors.Join(sourceErr, dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/checkout-address/internal/api"
	"github.com/alexivanou/checkout-address/internal/cart"
	"github.com/alexivanou/checkout-address/internal/checkout"
	"github.com/alexivanou/checkout-address/internal/config"
	"github.com/alexivanou/checkout-address/internal/courier"
	"github.com/alexivanou/checkout-address/internal/database"
	"github.com/alexivanou/checkout-address/internal/repository"
	"github.com/alexivanou/checkout-address/internal/service"
	"github.com/alexivanou/checkout-address/internal/stats"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const draftPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Run migrations
	if err := runMigrations(db, cfg); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	svc := service.NewService(
		courier.NewClient(cfg.Backend, httpClient, logger.Named("courier")),
		cart.NewClient(cfg.Backend, httpClient, logger.Named("cart")),
		repos.Draft,
		service.Options{
			DefaultProvider: cfg.Backend.DefaultProvider,
			Search: checkout.SessionOptions{
				Debounce:       cfg.Search.Debounce,
				MinQueryLength: cfg.Search.MinQueryLength,
			},
		},
		logger.Named("checkout"),
	)
	defer svc.Close()

	statsCollector := stats.NewCollector(db, cfg.DB, repos.Draft, svc)
	limiter := api.NewIPRateLimiter(
		rate.Limit(cfg.RateLimit.RequestsPerSecond),
		cfg.RateLimit.Burst,
		cfg.RateLimit.TrustProxies,
		logger.Named("ratelimit"),
	)
	router := api.NewRouter(svc, statsCollector, limiter, logger.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go purgeDrafts(ctx, svc, cfg.Drafts.TTL, logger)
	go limiter.Run(ctx, time.Minute, cfg.RateLimit.IdleTTL)

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("backend", cfg.Backend.URL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// purgeDrafts drops abandoned drafts until ctx is done
func purgeDrafts(ctx context.Context, svc *service.Service, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(draftPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.PurgeDrafts(ctx, ttl)
			if err != nil {
				logger.Warn("Failed to purge drafts", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Purged abandoned drafts", zap.Int64("count", n))
			}
		}
	}
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	// Choose migration source based on DB type
	sourcePath := "file://migrations/postgres"

	if cfg.DB.IsMemory() {
		sourcePath = "file://migrations/sqlite"
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(
			sourcePath,
			"sqlite3",
			driver,
		)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourcePath, cfg.DB.DSN())
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

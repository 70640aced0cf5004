package main

import (
	"context"
	"database/sql"
	"delivery-quote-service/internal/adapters/distance"
	"delivery-quote-service/internal/adapters/events"
	"delivery-quote-service/internal/adapters/ratelimit"
	"delivery-quote-service/internal/adapters/repositories"
	"delivery-quote-service/internal/api"
	"delivery-quote-service/internal/config"
	"delivery-quote-service/internal/platform/db"
	"delivery-quote-service/internal/platform/obs"
	"delivery-quote-service/internal/ports"
	"delivery-quote-service/internal/services"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, Geoapify, Redis, Kafka) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = obs.WithLogger(ctx, logger)

	conn, repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Untyped nil keeps the resolver's no-credential check working.
	var (
		geocoder ports.Geocoder
		router   ports.Router
	)
	if cfg.GeoapifyAPIKey == "" {
		logger.Warn("GEOAPIFY_API_KEY is not set; every quote uses the fallback distance",
			zap.String("fallback_km", cfg.FallbackKm.String()))
	} else {
		provider, err := distance.NewGeoapifyProvider(cfg.GeoapifyAPIKey, cfg.GeoapifyBaseURL, &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		})
		if err != nil {
			return err
		}
		geocoder, router = provider, provider
	}

	resolver := services.NewDistanceResolver(geocoder, router, services.DistanceResolverConfig{
		Country:    cfg.Country,
		FallbackKm: cfg.FallbackKm,
	})
	engine := services.NewPriceEngine(cfg.Rates, resolver)

	var publisher ports.QuotePublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaQuotePublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			return err
		}
		defer kp.Close()
		publisher = kp
		logger.Info("publishing quotes", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	var limiter ports.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		rl, err := ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			return err
		}
		limiter = rl
		logger.Info("rate limiting quotes", zap.Int("per_minute", cfg.RateLimitPerMinute))
	}

	handler := api.NewRouter(api.RouterDeps{
		Quotes:            services.NewQuoteService(engine, repo, publisher),
		Calculations:      repo,
		Limiter:           limiter,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		Logger:            logger,
	})

	// Write timeout covers two geocodes and one routing call.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      40 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured record store and makes sure its schema exists.
func openStore(ctx context.Context, cfg config.Config) (*sql.DB, *repositories.SQLCalculationRepository, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn, repositories.Postgres); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewPostgresCalculationRepository(conn), nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn, repositories.SQLite); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewSqliteCalculationRepository(conn), nil
	}
}

package main

import (
	"context"
	"database/sql"
	"delivery-quote-service/internal/adapters/repositories"
	"delivery-quote-service/internal/config"
	"delivery-quote-service/internal/platform/db"
	"delivery-quote-service/internal/platform/obs"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	driver := flag.String("driver", config.Get("STORE_DRIVER", config.StoreSQLite), "record store: sqlite or postgres")
	flag.Parse()

	logger, err := obs.NewLogger(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := initSchema(*driver, logger); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
}

func initSchema(driver string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		conn    *sql.DB
		dialect repositories.Dialect
		err     error
	)
	switch driver {
	case config.StorePostgres:
		url := config.Get("DATABASE_URL", "")
		if url == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", driver)
		}
		conn, err = db.Open(url)
		dialect = repositories.Postgres
	case config.StoreSQLite:
		path := config.Get("SQLITE_PATH", "data/calculations.db")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create sqlite directory: %w", err)
		}
		conn, err = db.OpenSQLite(path)
		dialect = repositories.SQLite
	default:
		return fmt.Errorf("unknown driver %q", driver)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Info("initializing database schema", zap.String("driver", dialect.Name))
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}
	logger.Info("schema ready")

	return nil
}

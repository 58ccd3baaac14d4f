package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"thirdcoast.systems/leadsync/internal/application"
	"thirdcoast.systems/leadsync/internal/config"
	"thirdcoast.systems/leadsync/internal/db"
)

func main() {
	slog.Info("Starting database migrator service")

	startupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conf, err := config.LoadConfig(startupCtx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.Backend != config.StorePostgres {
		slog.Error("STORE_BACKEND is not postgres, nothing to migrate", "store", conf.Backend)
		os.Exit(1)
	}

	log := application.NewLogger(os.Stderr, conf.LogLevel, conf.LogFormat)
	slog.SetDefault(log)

	// Connect to database with retry logic
	pool, err := application.OpenDBPoolWithRetry(startupCtx, *conf, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	databaseConnection, err := db.NewDatabaseConnection(startupCtx, pool)
	if err != nil {
		log.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}

	if err := databaseConnection.Migrate(startupCtx, log); err != nil {
		log.Error("failed to run PostgreSQL migrations", "error", err)
		os.Exit(1)
	}

	log.Info("Database migrations completed successfully")
}

// Command seed loads the sample menu into the configured database. Items
// that already exist by name are left alone, so it is safe to re-run.
package main

import (
	"context"
	"log"
	"os"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetDefault(logger.New("flavour-seed", cfg.LogLevel, os.Stdout))
	seedLog := logger.Default()

	if err := config.ConnectDatabase(cfg); err != nil {
		seedLog.Error("database_failed", "Failed to connect to database", err)
		os.Exit(1)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		seedLog.Error("migration_failed", "Failed to migrate database", err)
		os.Exit(1)
	}

	created, err := services.SeedMenu(context.Background(), db)
	if err != nil {
		seedLog.Error("seed_failed", "Failed to seed menu", err, "created", created)
		os.Exit(1)
	}

	seedLog.Info("seed_completed", "Sample menu loaded", "created", created)
}

package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/survey-engine/internal/config"
	"github.com/SAP-F-2025/survey-engine/internal/repositories/postgres"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase connects to Postgres and migrates the outbox schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(pgdriver.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

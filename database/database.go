package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradersecho/tradersecho/config"
	"github.com/tradersecho/tradersecho/logger"
	"github.com/tradersecho/tradersecho/models"
)

var DB *gorm.DB

// InitDB connects to Postgres, migrates the schema and ensures the
// indexes the rollup/dedup paths expect.
func InitDB(cfg config.DBConfig) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MaxConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(DB); err != nil {
		return err
	}

	logger.Infof("Database connected and migrated successfully")
	return nil
}

// Migrate runs the automigration plus the hand-written index set. Split
// out from InitDB so tests can run it against their own connection.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.MentionMinute{},
		&models.DailyRollup{},
		&models.Baseline{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := EnsureIndexes(db); err != nil {
		logger.Warnf("Failed to ensure indexes: %v", err)
	}
	return nil
}

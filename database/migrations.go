package database

import (
	"fmt"

	"gorm.io/gorm"
)

// EnsureIndexes creates the indexes and uniqueness constraints the write
// paths depend on. The rollup engine does not assume these exist; it
// introspects at run time and degrades to delete+insert when the unique
// rollup key is missing.
func EnsureIndexes(db *gorm.DB) error {
	// Dedup key for externally-sourced mentions. Partial so that synthetic
	// rows with a NULL external_id are never deduplicated.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uidx_mm_source_external
		ON mention_minutes (source, external_id)
		WHERE external_id IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create mention dedup index: %w", err)
	}

	// Rollup identity. One row per (day, ticker, source); source is ''
	// for all-source rollups.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uidx_rollup_day_ticker_source
		ON daily_rollups (day, ticker, source)
	`).Error; err != nil {
		return fmt.Errorf("failed to create rollup unique index: %w", err)
	}

	// Read-path indexes for the ranking queries.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_rollup_day_interest
		ON daily_rollups (day, interest DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create rollup interest index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_mm_ts_source
		ON mention_minutes (ts, source)
	`).Error; err != nil {
		return fmt.Errorf("failed to create mention ts index: %w", err)
	}

	return nil
}

package baseline

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tradersecho/tradersecho/logger"
	"github.com/tradersecho/tradersecho/models"
)

// minStd keeps z-score computation defined for quiet tickers.
const minStd = 1.0

// Tracker recomputes the rolling mean/std of daily mention volume per
// ticker. Recompute is a full rebuild, not incremental: safe to re-run
// at any time, with no ordering dependency on the rollup job.
type Tracker struct {
	db *gorm.DB
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

type tickerVolume struct {
	Ticker string
	Total  int64
}

// Recompute scans the trailing windowDays of the event store and upserts
// one baseline per observed ticker. The dispersion estimate is a fixed
// fraction of the mean, floored at minStd. Returns the number of tickers
// updated.
func (t *Tracker) Recompute(windowDays int) (int, error) {
	if windowDays < 1 {
		windowDays = 1
	}
	cutoff := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -windowDays)

	var volumes []tickerVolume
	err := t.db.Table("mention_minutes").
		Select("ticker, COALESCE(SUM(mentions), 0) AS total").
		Where("ts >= ?", cutoff).
		Group("ticker").
		Scan(&volumes).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan mention volumes: %w", err)
	}

	updated := 0
	for _, v := range volumes {
		mean := float64(v.Total) / float64(windowDays)
		std := mean * 0.2
		if std < minStd {
			std = minStd
		}

		if err := t.upsert(v.Ticker, windowDays, mean, std); err != nil {
			return updated, err
		}
		updated++
	}

	logger.Infof("baseline: recomputed %d tickers over a %d-day window", updated, windowDays)
	return updated, nil
}

func (t *Tracker) upsert(ticker string, windowDays int, mean, std float64) error {
	var existing models.Baseline
	err := t.db.Where("ticker = ? AND source = ?", ticker, "").First(&existing).Error
	switch {
	case err == nil:
		existing.WindowDays = windowDays
		existing.MeanMentions = mean
		existing.StdMentions = std
		if err := t.db.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update baseline for %s: %w", ticker, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := models.Baseline{
			Ticker:       ticker,
			Source:       "",
			WindowDays:   windowDays,
			MeanMentions: mean,
			StdMentions:  std,
		}
		if err := t.db.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert baseline for %s: %w", ticker, err)
		}
	default:
		return fmt.Errorf("failed to look up baseline for %s: %w", ticker, err)
	}
	return nil
}

package models

import (
	"time"
)

// User is an account that can view the free daily table and, when Pro,
// the real-time snapshot endpoints.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:255" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Pro          bool      `gorm:"default:false" json:"pro"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MentionMinute is one raw observation in the event store: a minute-
// granularity mention row emitted by an ingestion adapter or the
// simulator. The (source, external_id) pair is the sole dedup key; rows
// without an external id are never deduplicated.
type MentionMinute struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Ticker     string    `gorm:"size:16;index:idx_mm_ticker_ts" json:"ticker"`
	TS         time.Time `gorm:"index:idx_mm_ticker_ts;index" json:"ts"`
	Mentions   int       `gorm:"default:0" json:"mentions"`
	Pos        int       `gorm:"default:0" json:"pos"`
	Neg        int       `gorm:"default:0" json:"neg"`
	Neu        int       `gorm:"default:0" json:"neu"`
	Source     string    `gorm:"size:32;default:twitter;index" json:"source"`
	ExternalID *string   `gorm:"size:64" json:"external_id"`
}

func (MentionMinute) TableName() string {
	return "mention_minutes"
}

// DailyRollup stores one aggregate row per (day, ticker, source). Source
// is empty for rollups that span all sources. Rows are owned exclusively
// by the rollup engine; re-running a day replaces them in place.
type DailyRollup struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Ticker   string    `gorm:"size:16;index" json:"ticker"`
	Day      time.Time `gorm:"index" json:"day"`
	Source   string    `gorm:"size:32;default:''" json:"source"`
	Mentions int       `gorm:"default:0" json:"mentions"`
	Pos      int       `gorm:"default:0" json:"pos"`
	Neg      int       `gorm:"default:0" json:"neg"`
	Neu      int       `gorm:"default:0" json:"neu"`
	Interest float64   `gorm:"default:0" json:"interest"`
	Zscore   *float64  `json:"zscore"`
}

func (DailyRollup) TableName() string {
	return "daily_rollups"
}

// Baseline holds the rolling mean/std of daily mention volume for one
// ticker, recomputed wholesale by the baseline job. StdMentions is always
// floored to 1.0 so z-score computation stays defined.
type Baseline struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Ticker       string    `gorm:"size:16;uniqueIndex:uidx_baseline_ticker_source" json:"ticker"`
	Source       string    `gorm:"size:32;default:'';uniqueIndex:uidx_baseline_ticker_source" json:"source"`
	WindowDays   int       `gorm:"default:30" json:"window_days"`
	MeanMentions float64   `gorm:"default:0" json:"mean_mentions"`
	StdMentions  float64   `gorm:"default:1" json:"std_mentions"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Baseline) TableName() string {
	return "baselines"
}

// DailyItem is the API view of a DailyRollup. It carries both "interest"
// and "interest_score" for backward compatibility with existing clients.
type DailyItem struct {
	Ticker        string   `json:"ticker"`
	Date          string   `json:"date"`
	Mentions      int      `json:"mentions"`
	Pos           int      `json:"pos"`
	Neg           int      `json:"neg"`
	Neu           int      `json:"neu"`
	Interest      float64  `json:"interest"`
	InterestScore float64  `json:"interest_score"`
	Zscore        *float64 `json:"zscore"`
}

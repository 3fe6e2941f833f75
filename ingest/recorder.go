package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tradersecho/tradersecho/models"
)

// Outcome reports what Record did with a mention.
type Outcome int

const (
	Inserted Outcome = iota
	SkippedDuplicate
)

func (o Outcome) String() string {
	if o == SkippedDuplicate {
		return "skipped_duplicate"
	}
	return "inserted"
}

// Mention is the normalized record every adapter emits.
type Mention struct {
	Ticker    string
	Timestamp time.Time
	Sentiment string // positive | negative | neutral (pos/neg/neu accepted)
	Source    string
	// ExternalID is the origin-provided identifier used for dedup.
	// Empty means no dedup: the row may be stored multiple times.
	ExternalID string
}

// Recorder is the only write path into the event store.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record inserts one mention, truncated to minute granularity. When the
// mention carries an external id and a row with the same (source,
// external_id) already exists, the call is a no-op: the first write wins.
// A unique-constraint violation on the concurrent race is reported as a
// duplicate, not an error.
func (r *Recorder) Record(m Mention) (Outcome, error) {
	row, err := r.buildRow(m)
	if err != nil {
		return Inserted, err
	}

	if m.ExternalID != "" {
		var count int64
		err := r.db.Model(&models.MentionMinute{}).
			Where("source = ? AND external_id = ?", m.Source, m.ExternalID).
			Count(&count).Error
		if err != nil {
			return Inserted, fmt.Errorf("dedup lookup failed: %w", err)
		}
		if count > 0 {
			return SkippedDuplicate, nil
		}
	}

	if err := r.db.Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return SkippedDuplicate, nil
		}
		return Inserted, fmt.Errorf("failed to insert mention: %w", err)
	}
	return Inserted, nil
}

// RecordAll records a batch, returning how many were inserted and how
// many were skipped as duplicates. Individual row failures abort the
// batch; duplicates do not.
func (r *Recorder) RecordAll(mentions []Mention) (inserted, skipped int, err error) {
	for _, m := range mentions {
		outcome, err := r.Record(m)
		if err != nil {
			return inserted, skipped, err
		}
		if outcome == SkippedDuplicate {
			skipped++
		} else {
			inserted++
		}
	}
	return inserted, skipped, nil
}

// DeleteRange removes event rows with from <= ts < to. Backfill/reset
// tooling only; nothing else deletes from the event store.
func (r *Recorder) DeleteRange(from, to time.Time) (int64, error) {
	res := r.db.Where("ts >= ? AND ts < ?", from.UTC(), to.UTC()).
		Delete(&models.MentionMinute{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete range: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Recorder) buildRow(m Mention) (models.MentionMinute, error) {
	var row models.MentionMinute

	ticker := strings.ToUpper(strings.TrimSpace(m.Ticker))
	if ticker == "" {
		return row, fmt.Errorf("mention missing ticker")
	}
	if m.Timestamp.IsZero() {
		return row, fmt.Errorf("mention missing timestamp")
	}

	row.Ticker = ticker
	row.TS = m.Timestamp.UTC().Truncate(time.Minute)
	row.Source = m.Source
	if m.ExternalID != "" {
		id := m.ExternalID
		row.ExternalID = &id
	}

	row.Mentions = 1
	switch normalizeSentiment(m.Sentiment) {
	case "pos":
		row.Pos = 1
	case "neg":
		row.Neg = 1
	default:
		row.Neu = 1
	}
	return row, nil
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pos", "positive", "bullish":
		return "pos"
	case "neg", "negative", "bearish":
		return "neg"
	default:
		return "neu"
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Not every driver translates constraint errors.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

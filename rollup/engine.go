package rollup

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradersecho/tradersecho/logger"
	"github.com/tradersecho/tradersecho/models"
)

// eventShape is the aggregation strategy chosen for the live event table.
// The schema evolved across versions, so the engine introspects the
// available columns once per run instead of assuming a fixed shape.
type eventShape int

const (
	// shapeAggregated: pre-aggregated minute rows carrying explicit
	// mentions/pos/neg/neu columns, summed directly.
	shapeAggregated eventShape = iota
	// shapePerMention: one row per mention with a signed sentiment
	// column (-1/0/1), counted conditionally.
	shapePerMention
	// shapeCountOnly: neither; every row counts as one neutral mention.
	shapeCountOnly
)

func (s eventShape) String() string {
	switch s {
	case shapeAggregated:
		return "aggregated"
	case shapePerMention:
		return "per-mention"
	default:
		return "count-only"
	}
}

// Engine aggregates event-store rows into one daily_rollups row per
// (day, ticker, source), scored against the baselines table.
type Engine struct {
	db          *gorm.DB
	shape       eventShape
	canUpsert   bool
	defaultMean float64
	defaultStd  float64
}

// NewEngine introspects the live schema and resolves both strategies up
// front: which aggregation shape the event table supports, and whether
// daily_rollups carries the unique key needed for an atomic upsert.
func NewEngine(db *gorm.DB, defaultMean, defaultStd float64) (*Engine, error) {
	shape, err := detectEventShape(db)
	if err != nil {
		return nil, err
	}
	logger.Infof("rollup: detected %s event schema", shape)

	canUpsert, err := hasRollupUniqueKey(db)
	if err != nil {
		return nil, err
	}
	if canUpsert {
		logger.Infof("rollup: unique (day,ticker,source) key present, using ON CONFLICT upsert")
	} else {
		logger.Warnf("rollup: no unique (day,ticker,source) key, degrading to delete+insert")
	}

	return &Engine{
		db:          db,
		shape:       shape,
		canUpsert:   canUpsert,
		defaultMean: defaultMean,
		defaultStd:  defaultStd,
	}, nil
}

func detectEventShape(db *gorm.DB) (eventShape, error) {
	columnTypes, err := db.Migrator().ColumnTypes(&models.MentionMinute{})
	if err != nil {
		return shapeCountOnly, fmt.Errorf("failed to introspect mention_minutes: %w", err)
	}

	cols := make(map[string]bool, len(columnTypes))
	for _, c := range columnTypes {
		cols[c.Name()] = true
	}
	logger.Debugf("rollup: mention_minutes columns: %v", cols)

	if !cols["ticker"] {
		return shapeCountOnly, fmt.Errorf("mention_minutes is missing the ticker column")
	}
	switch {
	case cols["mentions"]:
		return shapeAggregated, nil
	case cols["sentiment"]:
		return shapePerMention, nil
	default:
		return shapeCountOnly, nil
	}
}

func hasRollupUniqueKey(db *gorm.DB) (bool, error) {
	indexes, err := db.Migrator().GetIndexes(&models.DailyRollup{})
	if err != nil {
		return false, fmt.Errorf("failed to introspect daily_rollups indexes: %w", err)
	}
	for _, idx := range indexes {
		unique, ok := idx.Unique()
		if !ok || !unique {
			continue
		}
		if sameColumns(idx.Columns(), []string{"day", "ticker", "source"}) {
			return true, nil
		}
	}
	return false, nil
}

func sameColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	set := make(map[string]bool, len(got))
	for _, c := range got {
		set[c] = true
	}
	for _, c := range want {
		if !set[c] {
			return false
		}
	}
	return true
}

// tickerAgg is one grouped aggregation result for a single day.
type tickerAgg struct {
	Ticker   string
	Mentions int
	Pos      int
	Neg      int
	Neu      int
}

// RollupRange processes each day in the range independently. A failure
// rolls back only the day in flight; days already committed stay
// committed, and the invocation is safely retryable.
func (e *Engine) RollupRange(r Range, source string) (int, error) {
	total := 0
	for _, day := range r.Days() {
		n, err := e.RollupDay(day, source)
		if err != nil {
			return total, fmt.Errorf("rollup for %s failed: %w", day.Format("2006-01-02"), err)
		}
		total += n
	}
	return total, nil
}

// RollupDay aggregates one UTC calendar day into daily_rollups, in a
// single transaction: either every ticker for that day is written or
// none are. Re-running a day is side-effect-identical to running it once.
func (e *Engine) RollupDay(day time.Time, source string) (int, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	written := 0

	err := e.db.Transaction(func(tx *gorm.DB) error {
		aggs, err := e.aggregateDay(tx, day, source)
		if err != nil {
			return err
		}
		if len(aggs) == 0 {
			return nil
		}

		baselines, err := e.loadBaselines(tx, aggs, source)
		if err != nil {
			return err
		}

		for _, agg := range aggs {
			row := e.scoreRow(day, source, agg, baselines)
			if err := e.writeRow(tx, row); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Infof("rollup: %s wrote %d tickers (source=%s, strategy=%s)",
		day.Format("2006-01-02"), written, sourceLabel(source), e.shape)
	return written, nil
}

func (e *Engine) aggregateDay(tx *gorm.DB, day time.Time, source string) ([]tickerAgg, error) {
	start := day
	end := day.AddDate(0, 0, 1)

	var selectExpr string
	switch e.shape {
	case shapeAggregated:
		selectExpr = `ticker,
			COALESCE(SUM(mentions), 0) AS mentions,
			COALESCE(SUM(pos), 0) AS pos,
			COALESCE(SUM(neg), 0) AS neg,
			COALESCE(SUM(neu), 0) AS neu`
	case shapePerMention:
		selectExpr = `ticker,
			COUNT(*) AS mentions,
			SUM(CASE WHEN sentiment = 1 THEN 1 ELSE 0 END) AS pos,
			SUM(CASE WHEN sentiment = -1 THEN 1 ELSE 0 END) AS neg,
			SUM(CASE WHEN sentiment = 0 THEN 1 ELSE 0 END) AS neu`
	default:
		selectExpr = `ticker,
			COUNT(*) AS mentions,
			0 AS pos,
			0 AS neg,
			COUNT(*) AS neu`
	}

	q := tx.Table("mention_minutes").
		Select(selectExpr).
		Where("ts >= ? AND ts < ?", start, end).
		Group("ticker")
	if source != "" {
		q = q.Where("source = ?", source)
	}

	var aggs []tickerAgg
	if err := q.Scan(&aggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate events: %w", err)
	}
	return aggs, nil
}

type baselineStat struct {
	Mean float64
	Std  float64
}

func (e *Engine) loadBaselines(tx *gorm.DB, aggs []tickerAgg, source string) (map[string]baselineStat, error) {
	tickers := make([]string, 0, len(aggs))
	for _, a := range aggs {
		tickers = append(tickers, a.Ticker)
	}

	var rows []models.Baseline
	err := tx.Where("ticker IN ? AND source = ?", tickers, source).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load baselines: %w", err)
	}

	stats := make(map[string]baselineStat, len(rows))
	for _, b := range rows {
		stats[b.Ticker] = baselineStat{Mean: b.MeanMentions, Std: b.StdMentions}
	}
	return stats, nil
}

func (e *Engine) scoreRow(day time.Time, source string, agg tickerAgg, baselines map[string]baselineStat) models.DailyRollup {
	stat, ok := baselines[agg.Ticker]
	if !ok {
		stat = baselineStat{Mean: e.defaultMean, Std: e.defaultStd}
	}

	var zscore *float64
	if stat.Std > 0 {
		z := (float64(agg.Mentions) - stat.Mean) / stat.Std
		zscore = &z
	}

	return models.DailyRollup{
		Ticker:   agg.Ticker,
		Day:      day,
		Source:   source,
		Mentions: agg.Mentions,
		Pos:      agg.Pos,
		Neg:      agg.Neg,
		Neu:      agg.Neu,
		Interest: float64(agg.Mentions),
		Zscore:   zscore,
	}
}

// writeRow leaves exactly one row per (day, ticker, source), whichever
// strategy is in effect.
func (e *Engine) writeRow(tx *gorm.DB, row models.DailyRollup) error {
	if e.canUpsert {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}, {Name: "ticker"}, {Name: "source"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mentions", "pos", "neg", "neu", "interest", "zscore",
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upsert failed for %s: %w", row.Ticker, err)
		}
		return nil
	}

	err := tx.Where("day = ? AND ticker = ? AND source = ?", row.Day, row.Ticker, row.Source).
		Delete(&models.DailyRollup{}).Error
	if err != nil {
		return fmt.Errorf("delete before insert failed for %s: %w", row.Ticker, err)
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("insert failed for %s: %w", row.Ticker, err)
	}
	return nil
}

func sourceLabel(source string) string {
	if source == "" {
		return "ALL"
	}
	return source
}

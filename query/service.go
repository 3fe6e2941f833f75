package query

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tradersecho/tradersecho/models"
)

// MaxLimit bounds a single page of results.
const MaxLimit = 200

// sortColumns whitelists the sortable fields. Identity fields sort
// ascending, metrics descending; anything unrecognized falls back to
// interest descending.
var sortColumns = map[string]struct {
	column    string
	ascending bool
}{
	"interest":       {"interest", false},
	"interest_score": {"interest", false},
	"mentions":       {"mentions", false},
	"pos":            {"pos", false},
	"neg":            {"neg", false},
	"neu":            {"neu", false},
	"zscore":         {"zscore", false},
	"ticker":         {"ticker", true},
	"day":            {"day", true},
}

// Service is a pure reader over the daily rollup store.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DailyParams filters and orders a ListDaily call. Zero values mean:
// all tickers, the last completed UTC day, interest_score descending,
// limit 50, page 1.
type DailyParams struct {
	Tickers  []string
	DateFrom string
	DateTo   string
	Sort     string
	Limit    int
	Page     int
}

// ListDaily returns one page of ranked daily aggregate rows.
func (s *Service) ListDaily(p DailyParams) ([]models.DailyItem, error) {
	start, end, err := dateRange(p.DateFrom, p.DateTo)
	if err != nil {
		return nil, err
	}

	limit := p.Limit
	if limit < 1 {
		limit = 50
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	q := s.db.Model(&models.DailyRollup{}).
		Where("day >= ? AND day <= ?", start, end)

	if len(p.Tickers) > 0 {
		upper := make([]string, 0, len(p.Tickers))
		for _, t := range p.Tickers {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				upper = append(upper, t)
			}
		}
		if len(upper) > 0 {
			q = q.Where("ticker IN ?", upper)
		}
	}

	sort, ok := sortColumns[strings.ToLower(strings.TrimSpace(p.Sort))]
	if !ok {
		sort = sortColumns["interest_score"]
	}
	dir := "DESC"
	if sort.ascending {
		dir = "ASC"
	}
	q = q.Order(fmt.Sprintf("%s %s", sort.column, dir)).
		Offset(offset).
		Limit(limit)

	var rows []models.DailyRollup
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily rollups: %w", err)
	}
	return toItems(rows), nil
}

// LiveSnapshot returns the top rows of the most recent aggregation
// window, ordered by interest. This is the payload the realtime push
// loop re-reads on every tick.
func (s *Service) LiveSnapshot(limit int) ([]models.DailyItem, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	start, end, _ := dateRange("", "")

	var rows []models.DailyRollup
	err := s.db.Model(&models.DailyRollup{}).
		Where("day >= ? AND day <= ?", start, end).
		Order("interest DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load live snapshot: %w", err)
	}
	return toItems(rows), nil
}

// dateRange defaults to the single most recently completed UTC day.
func dateRange(fromISO, toISO string) (time.Time, time.Time, error) {
	if fromISO != "" && toISO != "" {
		from, err := time.Parse("2006-01-02", fromISO)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date_from %q: %w", fromISO, err)
		}
		to, err := time.Parse("2006-01-02", toISO)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date_to %q: %w", toISO, err)
		}
		return from, to, nil
	}
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	return yesterday, yesterday, nil
}

// toItems converts storage rows to the display shape, rounding floats to
// 3 decimal places at the boundary. Full precision stays in the store.
func toItems(rows []models.DailyRollup) []models.DailyItem {
	items := make([]models.DailyItem, 0, len(rows))
	for _, r := range rows {
		interest := round3(r.Interest)
		var zscore *float64
		if r.Zscore != nil {
			z := round3(*r.Zscore)
			zscore = &z
		}
		items = append(items, models.DailyItem{
			Ticker:        r.Ticker,
			Date:          r.Day.UTC().Format("2006-01-02"),
			Mentions:      r.Mentions,
			Pos:           r.Pos,
			Neg:           r.Neg,
			Neu:           r.Neu,
			Interest:      interest,
			InterestScore: interest,
			Zscore:        zscore,
		})
	}
	return items
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

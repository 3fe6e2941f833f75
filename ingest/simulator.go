package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sentiment draw weighted toward neutral/positive, matching the shape of
// real symbol-stream traffic closely enough for demos.
var simulatedSentiments = []string{"negative", "neutral", "positive", "neutral", "neutral", "positive"}

// Simulator emits synthetic mentions. Each row gets a unique external id
// so repeated cycles never collide with the dedup key.
type Simulator struct {
	source string
	rng    *rand.Rand
}

func NewSimulator(source string) *Simulator {
	if source == "" {
		source = "synthetic"
	}
	return &Simulator{
		source: source,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) SourceName() string {
	return s.source
}

// FetchSince generates 1-3 mentions per ticker stamped at the current
// minute. The since argument is ignored; synthetic data has no history.
func (s *Simulator) FetchSince(_ context.Context, _ time.Time, tickers []string) ([]Mention, error) {
	now := time.Now().UTC().Truncate(time.Minute)
	return s.generateAt(now, tickers), nil
}

// GenerateRange produces a backfill: mentions spread over the given
// number of trailing days, several minutes per ticker per day.
func (s *Simulator) GenerateRange(days int, tickers []string) []Mention {
	var out []Mention
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for d := 0; d < days; d++ {
		day := today.AddDate(0, 0, -d)
		for i := 0; i < 4+s.rng.Intn(8); i++ {
			at := day.Add(time.Duration(s.rng.Intn(24*60)) * time.Minute)
			out = append(out, s.generateAt(at, tickers)...)
		}
	}
	return out
}

func (s *Simulator) generateAt(at time.Time, tickers []string) []Mention {
	var out []Mention
	for _, t := range tickers {
		n := 1 + s.rng.Intn(3)
		for i := 0; i < n; i++ {
			out = append(out, Mention{
				Ticker:    strings.ToUpper(t),
				Timestamp: at,
				Sentiment: simulatedSentiments[s.rng.Intn(len(simulatedSentiments))],
				Source:    s.source,
				ExternalID: fmt.Sprintf("sim-%s-%s-%s-%s",
					s.source, strings.ToUpper(t), at.Format("2006-01-02T15:04"), uuid.NewString()[:8]),
			})
		}
	}
	return out
}

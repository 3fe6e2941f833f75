package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorEmitsUniqueExternalIDs(t *testing.T) {
	sim := NewSimulator("synthetic")

	mentions, err := sim.FetchSince(context.Background(), time.Time{}, []string{"AAPL", "TSLA"})
	require.NoError(t, err)
	require.NotEmpty(t, mentions)

	seen := make(map[string]bool)
	for _, m := range mentions {
		assert.Equal(t, "synthetic", m.Source)
		assert.NotEmpty(t, m.ExternalID)
		assert.False(t, seen[m.ExternalID], "external ids must not repeat")
		seen[m.ExternalID] = true
		assert.Zero(t, m.Timestamp.Second())
		assert.Contains(t, []string{"positive", "negative", "neutral"}, m.Sentiment)
	}
}

func TestSimulatorGenerateRangeCoversDays(t *testing.T) {
	sim := NewSimulator("")
	assert.Equal(t, "synthetic", sim.SourceName())

	mentions := sim.GenerateRange(3, []string{"AAPL"})
	require.NotEmpty(t, mentions)

	days := make(map[string]bool)
	for _, m := range mentions {
		days[m.Timestamp.Format("2006-01-02")] = true
	}
	assert.Len(t, days, 3)
}

func TestCollectorRecordsAdapterOutput(t *testing.T) {
	db := openTestDB(t)
	recorder := NewRecorder(db)

	collector := NewCollector(recorder, []Fetcher{NewSimulator("synthetic")}, []string{"AAPL"}, time.Minute)
	collector.RunOnce(context.Background())

	var count int64
	require.NoError(t, db.Table("mention_minutes").Count(&count).Error)
	assert.Positive(t, count)
}

type sinceRecordingFetcher struct {
	mu     sync.Mutex
	sinces []time.Time
}

func (f *sinceRecordingFetcher) SourceName() string { return "stub" }

func (f *sinceRecordingFetcher) FetchSince(_ context.Context, since time.Time, _ []string) ([]Mention, error) {
	f.mu.Lock()
	f.sinces = append(f.sinces, since)
	f.mu.Unlock()
	return nil, nil
}

// Schedulers may fire overlapping cycles; lastRun bookkeeping has to
// hold up under the race detector.
func TestCollectorRunOnceConcurrent(t *testing.T) {
	db := openTestDB(t)
	fetcher := &sinceRecordingFetcher{}

	collector := NewCollector(NewRecorder(db), []Fetcher{fetcher}, []string{"AAPL"}, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.RunOnce(context.Background())
		}()
	}
	wg.Wait()

	require.Len(t, fetcher.sinces, 8)
	for _, since := range fetcher.sinces {
		assert.False(t, since.IsZero())
	}
}

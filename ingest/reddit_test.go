package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redditFixture(createdUTC int64) string {
	return fmt.Sprintf(`{
		"data": {"children": [
			{"data": {"id": "abc123", "title": "Loading up on $AAPL and $TSLA",
			 "selftext": "", "created_utc": %d}},
			{"data": {"id": "def456", "title": "No tickers here",
			 "selftext": "just vibes", "created_utc": %d}},
			{"data": {"id": "ghi789", "title": "What about $DOGE",
			 "selftext": "$AAPL to the moon", "created_utc": %d}}
		]}
	}`, createdUTC, createdUTC, createdUTC)
}

func TestRedditFetchSinceMatchesCashtags(t *testing.T) {
	created := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "Tradersecho-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, redditFixture(created.Unix()))
	}))
	defer srv.Close()

	adapter := NewRedditAdapter("Tradersecho-test")
	adapter.baseURL = srv.URL
	adapter.client = srv.Client()
	adapter.subs = []string{"stocks"}

	mentions, err := adapter.FetchSince(context.Background(), created.Add(-time.Hour), []string{"AAPL", "TSLA"})
	require.NoError(t, err)
	assert.Equal(t, 1, requests)

	// post 1 yields AAPL+TSLA, post 3 yields AAPL (DOGE not tracked)
	require.Len(t, mentions, 3)
	for _, m := range mentions {
		assert.Equal(t, "reddit", m.Source)
		assert.Equal(t, "neutral", m.Sentiment)
		assert.Contains(t, []string{"AAPL", "TSLA"}, m.Ticker)
	}
	assert.Equal(t, "t3_abc123", mentions[0].ExternalID)
}

func TestRedditFetchSinceSkipsOldPosts(t *testing.T) {
	created := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, redditFixture(created.Unix()))
	}))
	defer srv.Close()

	adapter := NewRedditAdapter("Tradersecho-test")
	adapter.baseURL = srv.URL
	adapter.client = srv.Client()
	adapter.subs = []string{"stocks"}

	mentions, err := adapter.FetchSince(context.Background(), created.Add(time.Hour), []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, mentions)
}

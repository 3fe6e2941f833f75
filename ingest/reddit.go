package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tradersecho/tradersecho/logger"
)

const redditBaseURL = "https://www.reddit.com"

var cashtagRE = regexp.MustCompile(`\$([A-Z]{1,6})`)

// RedditAdapter scans the newest posts of a few finance subreddits for
// cashtags. Posts carry no sentiment signal, so every mention is neutral.
type RedditAdapter struct {
	client    *http.Client
	baseURL   string
	userAgent string
	subs      []string
}

func NewRedditAdapter(userAgent string) *RedditAdapter {
	return &RedditAdapter{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: userAgent,
		subs:      []string{"stocks", "wallstreetbets", "investing"},
	}
}

func (a *RedditAdapter) SourceName() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *RedditAdapter) FetchSince(ctx context.Context, since time.Time, tickers []string) ([]Mention, error) {
	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[strings.ToUpper(t)] = true
	}

	var out []Mention
	for _, sub := range a.subs {
		listing, err := a.fetchNew(ctx, sub)
		if err != nil {
			logger.Warnf("reddit: fetch r/%s failed: %v", sub, err)
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			ts := time.Unix(int64(post.CreatedUTC), 0).UTC()
			if ts.Before(since) {
				continue
			}
			text := post.Title + "\n" + post.SelfText
			for _, match := range cashtagRE.FindAllStringSubmatch(text, -1) {
				ticker := match[1]
				if !wanted[ticker] {
					continue
				}
				out = append(out, Mention{
					Ticker:     ticker,
					Timestamp:  ts,
					Sentiment:  "neutral",
					Source:     a.SourceName(),
					ExternalID: "t3_" + post.ID,
				})
			}
		}
	}
	return out, nil
}

func (a *RedditAdapter) fetchNew(ctx context.Context, sub string) (*redditListing, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=100", a.baseURL, sub)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

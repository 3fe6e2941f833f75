package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tradersecho/tradersecho/logger"
)

const stocktwitsBaseURL = "https://api.stocktwits.com/api/2"

// StockTwitsAdapter polls the public StockTwits symbol stream. The
// request throttle is owned by the adapter instance, one token per call.
type StockTwitsAdapter struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewStockTwitsAdapter(ratePerMin int) *StockTwitsAdapter {
	if ratePerMin < 1 {
		ratePerMin = 1
	}
	return &StockTwitsAdapter{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: stocktwitsBaseURL,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMin)), 1),
	}
}

func (a *StockTwitsAdapter) SourceName() string {
	return "stocktwits"
}

type stocktwitsStream struct {
	Messages []stocktwitsMessage `json:"messages"`
}

type stocktwitsMessage struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Entities  struct {
		Sentiment struct {
			Basic string `json:"basic"`
		} `json:"sentiment"`
	} `json:"entities"`
}

// FetchSince polls one symbol stream per ticker. Symbols that fail to
// fetch or parse are skipped; the cycle continues with what it has.
func (a *StockTwitsAdapter) FetchSince(ctx context.Context, since time.Time, tickers []string) ([]Mention, error) {
	var out []Mention
	for _, t := range tickers {
		if err := a.limiter.Wait(ctx); err != nil {
			return out, err
		}

		stream, err := a.fetchSymbol(ctx, t)
		if err != nil {
			logger.Warnf("stocktwits: fetch %s failed: %v", t, err)
			continue
		}

		for _, msg := range stream.Messages {
			ts, err := time.Parse(time.RFC3339, msg.CreatedAt)
			if err != nil {
				continue
			}
			if ts.Before(since) {
				continue
			}
			out = append(out, Mention{
				Ticker:     strings.ToUpper(t),
				Timestamp:  ts,
				Sentiment:  mapBasicSentiment(msg.Entities.Sentiment.Basic),
				Source:     a.SourceName(),
				ExternalID: fmt.Sprintf("%d", msg.ID),
			})
		}
	}
	return out, nil
}

func (a *StockTwitsAdapter) fetchSymbol(ctx context.Context, ticker string) (*stocktwitsStream, error) {
	url := fmt.Sprintf("%s/streams/symbol/%s.json", a.baseURL, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var stream stocktwitsStream
	if err := json.NewDecoder(resp.Body).Decode(&stream); err != nil {
		return nil, err
	}
	return &stream, nil
}

func mapBasicSentiment(basic string) string {
	switch basic {
	case "Bullish":
		return "positive"
	case "Bearish":
		return "negative"
	default:
		return "neutral"
	}
}

package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/tradersecho/tradersecho/logger"
)

// Collector drains a set of adapters into the event store on a fixed
// interval. One failing adapter never aborts the cycle. RunOnce is safe
// to call from concurrent schedulers.
type Collector struct {
	recorder *Recorder
	adapters []Fetcher
	tickers  []string
	interval time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

func NewCollector(recorder *Recorder, adapters []Fetcher, tickers []string, interval time.Duration) *Collector {
	return &Collector{
		recorder: recorder,
		adapters: adapters,
		tickers:  tickers,
		interval: interval,
	}
}

// RunOnce performs a single collection cycle across all adapters.
func (c *Collector) RunOnce(ctx context.Context) {
	c.mu.Lock()
	since := c.lastRun
	if since.IsZero() {
		since = time.Now().UTC().Add(-c.interval)
	}
	c.lastRun = time.Now().UTC()
	c.mu.Unlock()

	for _, adapter := range c.adapters {
		mentions, err := adapter.FetchSince(ctx, since, c.tickers)
		if err != nil {
			logger.Warnf("collector: %s fetch failed: %v", adapter.SourceName(), err)
		}
		if len(mentions) == 0 {
			logger.Debugf("collector: %s returned no mentions", adapter.SourceName())
			continue
		}

		inserted, skipped, err := c.recorder.RecordAll(mentions)
		if err != nil {
			logger.Errorf("collector: %s record failed: %v", adapter.SourceName(), err)
			continue
		}
		logger.Infof("collector: %s inserted=%d skipped=%d", adapter.SourceName(), inserted, skipped)
	}
}

// Run loops RunOnce until the context is canceled.
func (c *Collector) Run(ctx context.Context) {
	logger.Infof("collector: starting with %d adapters, interval %s", len(c.adapters), c.interval)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			logger.Infof("collector: stopping")
			return
		}
	}
}

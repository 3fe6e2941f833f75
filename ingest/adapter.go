package ingest

import (
	"context"
	"time"
)

// Fetcher is implemented by every ingestion source. Implementations are
// narrow fetch-and-normalize shims: they return whatever mentions were
// observed since the given time and never fail the collection cycle —
// an unreachable source yields an empty slice.
type Fetcher interface {
	SourceName() string
	FetchSince(ctx context.Context, since time.Time, tickers []string) ([]Mention, error)
}

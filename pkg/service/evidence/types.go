package evidence

import (
	"context"
	"time"
)

// Source defines the capability to gather raw evidence about a company topic
// from the public web.
type Source interface {
	// Search runs a web search and returns ranked evidence results
	Search(ctx context.Context, query string) ([]Result, error)

	// Name identifies the provider for logging and source attribution
	Name() string
}

// Fetcher retrieves the textual content of a single page. Providers that can
// expand a search hit into full page text implement this in addition to Source.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Result represents one piece of raw evidence returned by a provider
type Result struct {
	SourceID    string
	Title       string
	URL         string
	Text        string
	RetrievedAt time.Time
}

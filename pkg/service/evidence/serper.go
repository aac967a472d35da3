package evidence

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/utils/safe"
)

const (
	serperEndpoint   = "https://google.serper.dev/search"
	serperMaxResults = 10
)

// Serper is a Source backed by the serper.dev Google search API.
type Serper struct {
	apiKey     string
	httpClient *http.Client
}

// SerperOption is a functional option for Serper configuration
type SerperOption func(*Serper)

// WithSerperHTTPClient overrides the HTTP client, mainly for tests
func WithSerperHTTPClient(client *http.Client) SerperOption {
	return func(s *Serper) {
		s.httpClient = client
	}
}

// NewSerper creates a Serper search provider with the given API key
func NewSerper(apiKey string, opts ...SerperOption) (*Serper, error) {
	if apiKey == "" {
		return nil, goerr.New("Serper API key is required")
	}

	s := &Serper{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Serper) Name() string { return "serper" }

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

// Search runs a Google search via serper.dev and returns the organic results
func (s *Serper) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(serperRequest{Query: query, Num: serperMaxResults})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build search request")
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call serper API", goerr.V("query", query))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("serper API returned non-OK status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode serper response")
	}

	now := time.Now().UTC()
	results := make([]Result, 0, len(parsed.Organic))
	for _, item := range parsed.Organic {
		if item.Snippet == "" {
			continue
		}
		results = append(results, Result{
			SourceID:    sourceID(s.Name(), item.Link),
			Title:       item.Title,
			URL:         item.Link,
			Text:        item.Snippet,
			RetrievedAt: now,
		})
	}

	return results, nil
}

// sourceID derives a stable identifier from the provider and the result URL
func sourceID(provider, url string) string {
	sum := sha256.Sum256([]byte(url))
	return provider + ":" + hex.EncodeToString(sum[:6])
}

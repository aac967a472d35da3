package evidence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/utils/safe"
)

const duckduckgoEndpoint = "https://api.duckduckgo.com/"

// DuckDuckGo is a keyless Source backed by the DuckDuckGo instant answer API.
// It returns shallower results than Serper and serves as the fallback provider.
type DuckDuckGo struct {
	httpClient *http.Client
}

// DuckDuckGoOption is a functional option for DuckDuckGo configuration
type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoHTTPClient overrides the HTTP client, mainly for tests
func WithDuckDuckGoHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.httpClient = client
	}
}

// NewDuckDuckGo creates a DuckDuckGo search provider
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

type duckduckgoResponse struct {
	AbstractText  string            `json:"AbstractText"`
	AbstractURL   string            `json:"AbstractURL"`
	Heading       string            `json:"Heading"`
	RelatedTopics []duckduckgoTopic `json:"RelatedTopics"`
}

type duckduckgoTopic struct {
	Text     string            `json:"Text"`
	FirstURL string            `json:"FirstURL"`
	Topics   []duckduckgoTopic `json:"Topics"`
}

// Search queries the instant answer API and flattens abstract + related topics
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_redirect":   {"1"},
		"skip_disambig": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, duckduckgoEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build search request")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call duckduckgo API", goerr.V("query", query))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("duckduckgo API returned non-OK status", goerr.V("status", resp.StatusCode))
	}

	var parsed duckduckgoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode duckduckgo response")
	}

	now := time.Now().UTC()
	var results []Result

	if parsed.AbstractText != "" {
		results = append(results, Result{
			SourceID:    sourceID(d.Name(), parsed.AbstractURL),
			Title:       parsed.Heading,
			URL:         parsed.AbstractURL,
			Text:        parsed.AbstractText,
			RetrievedAt: now,
		})
	}

	for _, topic := range flattenTopics(parsed.RelatedTopics) {
		if topic.Text == "" {
			continue
		}
		results = append(results, Result{
			SourceID:    sourceID(d.Name(), topic.FirstURL),
			Title:       topic.Text,
			URL:         topic.FirstURL,
			Text:        topic.Text,
			RetrievedAt: now,
		})
	}

	return results, nil
}

func flattenTopics(topics []duckduckgoTopic) []duckduckgoTopic {
	var flat []duckduckgoTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flat = append(flat, flattenTopics(t.Topics)...)
			continue
		}
		flat = append(flat, t)
	}
	return flat
}

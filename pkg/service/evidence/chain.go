package evidence

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// Chain is a Source that tries providers in order and returns the first
// non-empty result set. A failing provider degrades to the next one instead
// of failing the search.
type Chain struct {
	providers []Source
}

// NewChain builds a fallback chain from the given providers
func NewChain(providers ...Source) (*Chain, error) {
	if len(providers) == 0 {
		return nil, goerr.New("at least one search provider is required")
	}

	return &Chain{providers: providers}, nil
}

func (c *Chain) Name() string { return "chain" }

// Search queries each provider until one returns results. It returns an error
// only when every provider fails; an empty result set from all providers is
// not an error.
func (c *Chain) Search(ctx context.Context, query string) ([]Result, error) {
	logger := logging.From(ctx)

	var errs []error
	for _, provider := range c.providers {
		results, err := provider.Search(ctx, query)
		if err != nil {
			logger.Warn("search provider degraded",
				"provider", provider.Name(),
				"query", query,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	if len(errs) == len(c.providers) {
		return nil, goerr.Wrap(errs[0], "all search providers failed",
			goerr.V("providers", len(c.providers)),
			goerr.V("query", query),
		)
	}

	return nil, nil
}

package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/duedil-lab/diligent/pkg/service/evidence"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// Search holds configuration for evidence search providers
type Search struct {
	serperAPIKey string
}

// Flags returns CLI flags for search configuration
func (s *Search) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "serper-api-key",
			Usage:       "API key for serper.dev Google search (falls back to DuckDuckGo when unset)",
			Category:    "Search",
			Sources:     cli.EnvVars("DILIGENT_SERPER_API_KEY"),
			Destination: &s.serperAPIKey,
		},
	}
}

func (s Search) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("serper-api-key.len", len(s.serperAPIKey)),
	)
}

// Configure builds the evidence source chain. Serper leads when a key is
// configured; DuckDuckGo is always present as the keyless fallback.
func (s *Search) Configure() (evidence.Source, error) {
	providers := make([]evidence.Source, 0, 2)

	if s.serperAPIKey != "" {
		serper, err := evidence.NewSerper(s.serperAPIKey)
		if err != nil {
			return nil, err
		}
		providers = append(providers, serper)
		logging.Default().Info("Serper search provider enabled")
	} else {
		logging.Default().Info("Serper API key not configured, using DuckDuckGo only")
	}

	providers = append(providers, evidence.NewDuckDuckGo())

	return evidence.NewChain(providers...)
}

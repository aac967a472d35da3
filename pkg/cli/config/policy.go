package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/duedil-lab/diligent/pkg/domain/model"
)

// Policy holds CLI flags for the investigation policy file
type Policy struct {
	path string
}

// policyFile is the TOML schema of a policy file. Omitted fields keep the
// built-in defaults.
type policyFile struct {
	Topics                []string `toml:"topics"`
	MinFragmentChars      *int     `toml:"min_fragment_chars"`
	MaxSummaryWords       *int     `toml:"max_summary_words"`
	DedupThreshold        *float64 `toml:"dedup_threshold"`
	FreshnessWithinWindow *bool    `toml:"freshness_within_window"`
	MaxCycles             *int     `toml:"max_cycles"`
	KeepArchives          *int     `toml:"keep_archives"`
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to investigation policy TOML file",
			Category:    "Policy",
			Sources:     cli.EnvVars("DILIGENT_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure loads the policy file over the built-in defaults
func (p *Policy) Configure() (*model.Policy, error) {
	policy := model.DefaultPolicy()
	if p.path == "" {
		return policy, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", p.path))
	}

	var file policyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy TOML", goerr.V("path", p.path))
	}

	if len(file.Topics) > 0 {
		policy.Topics = file.Topics
	}
	if file.MinFragmentChars != nil {
		policy.MinFragmentChars = *file.MinFragmentChars
	}
	if file.MaxSummaryWords != nil {
		policy.MaxSummaryWords = *file.MaxSummaryWords
	}
	if file.DedupThreshold != nil {
		policy.DedupThreshold = *file.DedupThreshold
	}
	if file.FreshnessWithinWindow != nil {
		policy.FreshnessWithinWindow = *file.FreshnessWithinWindow
	}
	if file.MaxCycles != nil {
		policy.MaxCycles = *file.MaxCycles
	}
	if file.KeepArchives != nil {
		policy.KeepArchives = *file.KeepArchives
	}

	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V("path", p.path))
	}

	return policy, nil
}

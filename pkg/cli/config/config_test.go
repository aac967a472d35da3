package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/duedil-lab/diligent/pkg/cli/config"
	"github.com/duedil-lab/diligent/pkg/service/notify"
)

func TestGemini_Configure(t *testing.T) {
	t.Run("requires project ID", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1")
		_, err := cfg.Configure(t.Context())
		gt.Value(t, err).NotNil()
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "")
		gt.Value(t, len(cfg.Flags())).Equal(2)
	})
}

func TestSearch_Configure(t *testing.T) {
	t.Run("falls back to DuckDuckGo without key", func(t *testing.T) {
		cfg := config.NewSearchForTest("")
		source, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, source).NotNil()
	})

	t.Run("chains serper before the fallback", func(t *testing.T) {
		cfg := config.NewSearchForTest("test-key")
		source, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, source.Name()).Equal("chain")
	})
}

func TestNotify_Configure(t *testing.T) {
	t.Run("discards when slack is not set up", func(t *testing.T) {
		cfg := config.NewNotifyForTest("", "")
		notifier, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, notifier).Equal(notify.Discard{})
	})

	t.Run("channel without token still discards", func(t *testing.T) {
		cfg := config.NewNotifyForTest("", "#due-diligence")
		notifier, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, notifier).Equal(notify.Discard{})
	})
}

func TestPolicy_Configure(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg := config.NewPolicyForTest("")
		policy, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Bool(t, len(policy.Topics) > 0).True()
		gt.Number(t, policy.MaxSummaryWords).Equal(200)
	})

	t.Run("file overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		content := `
topics = ["financials", "sanctions"]
max_cycles = 3
dedup_threshold = 0.85
`
		gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

		cfg := config.NewPolicyForTest(path)
		policy, err := cfg.Configure()
		gt.NoError(t, err).Required()

		gt.Array(t, policy.Topics).Equal([]string{"financials", "sanctions"})
		gt.Number(t, policy.MaxCycles).Equal(3)
		gt.Value(t, policy.DedupThreshold).Equal(0.85)
		// untouched fields keep the defaults
		gt.Number(t, policy.MaxSummaryWords).Equal(200)
		gt.Bool(t, policy.FreshnessWithinWindow).True()
	})

	t.Run("invalid overlay is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		gt.NoError(t, os.WriteFile(path, []byte("max_summary_words = 0\n"), 0600)).Required()

		cfg := config.NewPolicyForTest(path)
		_, err := cfg.Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file is an error", func(t *testing.T) {
		cfg := config.NewPolicyForTest("/no/such/policy.toml")
		_, err := cfg.Configure()
		gt.Value(t, err).NotNil()
	})
}

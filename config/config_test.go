package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantworks/backtester/market"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Data.Dir = "./data"
	cfg.Strategy.Name = "rsi-reversion"
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{"zero starting cash", func(c *Config) { c.Account.StartingCash = 0 }, "starting_cash"},
		{"negative min to enter", func(c *Config) { c.Account.MinToEnter = -1 }, "min_to_enter"},
		{"missing data dir", func(c *Config) { c.Data.Dir = "" }, "data.dir"},
		{"bad rebalance", func(c *Config) { c.Data.Rebalance = "hourly" }, "rebalance"},
		{"negative lookback", func(c *Config) { c.Data.MaxLookback = -1 }, "max_lookback"},
		{"bad start date", func(c *Config) { c.Data.Start = "06/01/2020" }, "data.start"},
		{"bad end date", func(c *Config) { c.Data.End = "soon" }, "data.end"},
		{"missing strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name"},
		{"empty sweep values", func(c *Config) { c.Sweep.Params = map[string][]float64{"a": {}} }, "sweep.params.a"},
		{"csv journal without files", func(c *Config) { c.Journal.LotsFile = "" }, "lots_file"},
		{"sqlite journal without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }, "db_path"},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backtester.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  starting_cash: 50000
  compound: true
data:
  dir: ./data
  rebalance: weekly
  max_lookback: 100
strategy:
  name: rsi-reversion
  params:
    rsi_len: 10
journal:
  type: none
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, cfg.Account.StartingCash)
	assert.True(t, cfg.Account.Compound)
	assert.Equal(t, market.Weekly, cfg.Rebalance())
	assert.Equal(t, 100, cfg.Data.MaxLookback)
	assert.Equal(t, 10.0, cfg.Strategy.Params["rsi_len"])
	// Defaults fill what the file leaves out.
	assert.True(t, cfg.Account.AbleToExceed)
	assert.Equal(t, 10, cfg.Account.MinToEnter)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "backtester.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "data": {"dir": "./data", "rebalance": "daily"},
  "strategy": {"name": "rsi-reversion"},
  "journal": {"type": "none"}
}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rsi-reversion", cfg.Strategy.Name)
	assert.Equal(t, 100000.0, cfg.Account.StartingCash, "default survives")
}

func TestLoadFromFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  dir: ./data\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err, "strategy name missing")

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

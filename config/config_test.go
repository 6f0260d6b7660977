package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jup-swap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://quote-api.jup.ag/v6", cfg.Aggregator.BaseURL)
	assert.Equal(t, "/swap", cfg.Aggregator.BuildPath)
	assert.Equal(t, 10*time.Second, cfg.Aggregator.Timeout)
	assert.Equal(t, 250, cfg.Swap.SlippageBps)
	assert.True(t, cfg.Swap.CheckBalance)
	assert.Equal(t, int64(50000), cfg.Build.ComputeUnitPriceMicroLamports)
	assert.Equal(t, 54, cfg.Build.MaxAccounts)
	assert.Equal(t, SubmitModeExecute, cfg.Submit.Mode)
	assert.Equal(t, 3, cfg.Retry.ConfirmAttempts)
	assert.Equal(t, time.Second, cfg.Retry.ConfirmInterval)
	assert.Equal(t, "WALLET_PRIVATE_KEY", cfg.Wallet.EnvVar)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
rpc:
  url: http://localhost:8899
swap:
  input_mint: So11111111111111111111111111111111111111112
  output_mint: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
  amount: 5000000000
retry:
  confirm_interval: 250ms
`)
	t.Setenv("JUP_SWAP_SUBMIT_MODE", "rpc")
	t.Setenv("JUP_SWAP_SWAP_SLIPPAGE_BPS", "100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.RPC.URL)
	assert.Equal(t, SubmitModeRPC, cfg.Submit.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.ConfirmInterval)

	req := cfg.SwapRequest()
	assert.Equal(t, uint64(5_000_000_000), req.Amount)
	assert.Equal(t, 100, req.SlippageBps)
	assert.NoError(t, req.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Aggregator.BaseURL = "" }},
		{"empty rpc url", func(c *Config) { c.RPC.URL = "" }},
		{"unknown mode", func(c *Config) { c.Submit.Mode = "bundle" }},
		{"zero confirm attempts", func(c *Config) { c.Retry.ConfirmAttempts = 0 }},
		{"negative delay", func(c *Config) { c.Retry.QuoteDelay = -time.Second }},
		{"slippage too high", func(c *Config) { c.Swap.SlippageBps = 10001 }},
		{"negative rate", func(c *Config) { c.Aggregator.RequestsPerSecond = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

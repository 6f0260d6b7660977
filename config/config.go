package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jup-swap/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Aggregator AggregatorConfig `mapstructure:"aggregator" yaml:"aggregator"`
	RPC        RPCConfig        `mapstructure:"rpc" yaml:"rpc"`
	Swap       SwapConfig       `mapstructure:"swap" yaml:"swap"`
	Build      BuildConfig      `mapstructure:"build" yaml:"build"`
	Submit     SubmitConfig     `mapstructure:"submit" yaml:"submit"`
	Retry      RetryConfig      `mapstructure:"retry" yaml:"retry"`
	Wallet     WalletConfig     `mapstructure:"wallet" yaml:"wallet"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

type AggregatorConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	BuildPath         string        `mapstructure:"build_path" yaml:"build_path"`
	ExecutePath       string        `mapstructure:"execute_path" yaml:"execute_path"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

type RPCConfig struct {
	URL        string `mapstructure:"url" yaml:"url"`
	Commitment string `mapstructure:"commitment" yaml:"commitment"`
}

// SwapConfig is the request used when the swap command gets no arguments.
// Amount is in smallest units.
type SwapConfig struct {
	InputMint   string `mapstructure:"input_mint" yaml:"input_mint"`
	OutputMint  string `mapstructure:"output_mint" yaml:"output_mint"`
	Amount      uint64 `mapstructure:"amount" yaml:"amount"`
	SlippageBps int    `mapstructure:"slippage_bps" yaml:"slippage_bps"`
	// CheckBalance refuses to quote when the wallet holds less than Amount
	CheckBalance bool `mapstructure:"check_balance" yaml:"check_balance"`
}

type BuildConfig struct {
	ComputeUnitPriceMicroLamports int64 `mapstructure:"compute_unit_price_micro_lamports" yaml:"compute_unit_price_micro_lamports"`
	MaxAccounts                   int   `mapstructure:"max_accounts" yaml:"max_accounts"`
}

// Submit modes
const (
	SubmitModeExecute = "execute"
	SubmitModeRPC     = "rpc"
)

type SubmitConfig struct {
	Mode          string `mapstructure:"mode" yaml:"mode"`
	SkipPreflight bool   `mapstructure:"skip_preflight" yaml:"skip_preflight"`
}

type RetryConfig struct {
	QuoteAttempts   int           `mapstructure:"quote_attempts" yaml:"quote_attempts"`
	QuoteDelay      time.Duration `mapstructure:"quote_delay" yaml:"quote_delay"`
	ConfirmAttempts int           `mapstructure:"confirm_attempts" yaml:"confirm_attempts"`
	ConfirmInterval time.Duration `mapstructure:"confirm_interval" yaml:"confirm_interval"`
}

type WalletConfig struct {
	EnvVar string `mapstructure:"env_var" yaml:"env_var"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("aggregator.base_url", "https://quote-api.jup.ag/v6")
	v.SetDefault("aggregator.build_path", "/swap")
	v.SetDefault("aggregator.execute_path", "/swap/execute")
	v.SetDefault("aggregator.timeout", "10s")
	v.SetDefault("aggregator.requests_per_second", 2)

	v.SetDefault("rpc.url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("rpc.commitment", "confirmed")

	v.SetDefault("swap.input_mint", "")
	v.SetDefault("swap.output_mint", "")
	v.SetDefault("swap.amount", 0)
	v.SetDefault("swap.slippage_bps", 250)
	v.SetDefault("swap.check_balance", true)

	v.SetDefault("build.compute_unit_price_micro_lamports", 50000)
	v.SetDefault("build.max_accounts", 54)

	v.SetDefault("submit.mode", SubmitModeExecute)
	v.SetDefault("submit.skip_preflight", false)

	v.SetDefault("retry.quote_attempts", 3)
	v.SetDefault("retry.quote_delay", "1s")
	v.SetDefault("retry.confirm_attempts", 3)
	v.SetDefault("retry.confirm_interval", "1s")

	v.SetDefault("wallet.env_var", "WALLET_PRIVATE_KEY")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("metrics.addr", "")
}

// Load reads configuration from environment variables and config file.
// An explicit cfgFile must exist; otherwise .jup-swap.yaml is optional.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".jup-swap")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Read from environment variables, e.g. JUP_SWAP_RPC_URL
	v.SetEnvPrefix("JUP_SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values the pipeline cannot run without
func (c *Config) Validate() error {
	if c.Aggregator.BaseURL == "" {
		return fmt.Errorf("aggregator.base_url is required")
	}
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}
	if c.Aggregator.RequestsPerSecond < 0 {
		return fmt.Errorf("aggregator.requests_per_second must not be negative")
	}
	switch c.Submit.Mode {
	case SubmitModeExecute, SubmitModeRPC:
	default:
		return fmt.Errorf("submit.mode must be %q or %q, got %q", SubmitModeExecute, SubmitModeRPC, c.Submit.Mode)
	}
	if c.Retry.QuoteAttempts < 1 || c.Retry.ConfirmAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1")
	}
	if c.Retry.QuoteDelay < 0 || c.Retry.ConfirmInterval < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	if c.Swap.SlippageBps < 0 || c.Swap.SlippageBps > types.MaxSlippageBps {
		return fmt.Errorf("swap.slippage_bps must be between 0 and %d", types.MaxSlippageBps)
	}
	return nil
}

// SwapRequest builds the request described by the swap section
func (c *Config) SwapRequest() types.SwapRequest {
	return types.SwapRequest{
		InputMint:   c.Swap.InputMint,
		OutputMint:  c.Swap.OutputMint,
		Amount:      c.Swap.Amount,
		SlippageBps: c.Swap.SlippageBps,
	}
}

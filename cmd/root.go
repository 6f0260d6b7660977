package cmd

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jup-swap/config"
	"jup-swap/pkg/logger"
	"jup-swap/pkg/metrics"
	"jup-swap/pkg/swap"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        zerolog.Logger
	metricsSrv *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "jup-swap",
	Short: "A CLI for single-shot Solana token swaps through the Jupiter aggregator",
	Long: `jup-swap fetches a quote from the Jupiter swap aggregator, builds the swap
transaction, submits it and waits for the chain to confirm it.

The wallet secret key is read from WALLET_PRIVATE_KEY (or the variable named
by wallet.env_var). A .env file in the working directory is loaded first.

Examples:
  jup-swap swap 5 SOL to USDC
  jup-swap swap 5000000000 SOL to USDC --raw --slippage-bps 100
  jup-swap quote 1 SOL to JUP
  jup-swap status <txid> --watch
  jup-swap list-tokens`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			c.Log.Level = "debug"
		}
		cfg = c

		log = logger.New(logger.Options{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File})
		if c.Metrics.Addr != "" {
			metricsSrv = metrics.Serve(c.Metrics.Addr)
			log.Debug().Str("addr", c.Metrics.Addr).Msg("metrics endpoint started")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if metricsSrv != nil {
			_ = metricsSrv.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.jup-swap.yaml)")
}

// exitWithError writes the failure report as JSON to stderr and exits 1
func exitWithError(cmd *cobra.Command, res *swap.Result, err error) {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); !jsonOutput {
		color.New(color.FgRed).Fprintf(os.Stderr, "\nError: %v\n\n", err)
	}
	data, _ := json.Marshal(swap.NewReport(res, err))
	_, _ = os.Stderr.Write(append(data, '\n'))
	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}
	os.Exit(1)
}

func printJSON(v any) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	_, _ = os.Stdout.Write(append(jsonData, '\n'))
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"jup-swap/config"
	"jup-swap/pkg/balance"
	"jup-swap/pkg/parser"
	"jup-swap/pkg/swap"
	"jup-swap/pkg/types"
	"jup-swap/pkg/wallet"
)

var (
	rawAmount        bool
	slippageBps      int
	submitMode       string
	skipBalanceCheck bool
)

var swapCmd = &cobra.Command{
	Use:   "swap [<amount> <input-token> to <output-token>]",
	Short: "Quote, build, submit and confirm a single swap",
	Long: `Swap tokens on Solana through the Jupiter aggregator.

Tokens are SOL, USDC, USDT, BONK, JUP or any mint address. Amounts are in
token units unless --raw is given. Without arguments the request is taken
from the swap section of the config file.

On success the transaction id is the only line written to stdout. Progress
and logs go to stderr; a failure prints a JSON report to stderr and exits 1.

Examples:
  jup-swap swap 5 SOL to USDC
  jup-swap swap 5000000000 SOL to USDC --raw
  jup-swap swap 100 USDC to JUP --slippage-bps 50 --mode rpc
  jup-swap swap --json`,
	Run: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().BoolVar(&rawAmount, "raw", false, "Amount is already in smallest units")
	swapCmd.Flags().IntVar(&slippageBps, "slippage-bps", 0, "Slippage tolerance in basis points (default from config)")
	swapCmd.Flags().StringVar(&submitMode, "mode", "", "Submit through the aggregator (execute) or chain RPC (rpc)")
	swapCmd.Flags().BoolVar(&skipBalanceCheck, "skip-balance-check", false, "Do not check the wallet balance before quoting")
}

func runSwap(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rpcClient := rpc.New(cfg.RPC.URL)
	checker := balance.NewChecker(rpcClient, rpc.CommitmentType(cfg.RPC.Commitment))
	req, err := requestFromArgs(ctx, cmd, args, cfg, checker)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	if submitMode != "" {
		cfg.Submit.Mode = submitMode
		if err := cfg.Validate(); err != nil {
			exitWithError(cmd, nil, err)
		}
	}

	w, err := wallet.Load(cfg.Wallet.EnvVar)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	if cfg.Swap.CheckBalance && !skipBalanceCheck {
		mint := solana.MustPublicKeyFromBase58(req.InputMint)
		if err := checker.Ensure(ctx, w.PublicKey(), mint, req.Amount); err != nil {
			exitWithError(cmd, nil, err)
		}
	}

	var sinks []swap.Sink
	if !jsonOutput {
		sinks = append(sinks, newNarrator())
	}
	pipeline, err := newPipeline(cfg, w, rpcClient, sinks...)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	res, err := pipeline.Run(ctx, req)
	if err != nil {
		exitWithError(cmd, res, err)
	}

	if jsonOutput {
		printJSON(swap.NewReport(res, nil))
		return
	}
	fmt.Println(res.TxID)
}

// decimalsLookup resolves the decimals of mints missing from the alias table
type decimalsLookup interface {
	Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// requestFromArgs parses "<amount> <token> to <token>" or falls back to the
// configured request when no arguments are given
func requestFromArgs(ctx context.Context, cmd *cobra.Command, args []string, c *config.Config, lookup decimalsLookup) (types.SwapRequest, error) {
	slippage := c.Swap.SlippageBps
	if cmd.Flags().Changed("slippage-bps") {
		slippage = slippageBps
	}

	if len(args) == 0 {
		req := c.SwapRequest()
		req.SlippageBps = slippage
		if err := req.Validate(); err != nil {
			return req, fmt.Errorf("no swap arguments and swap config incomplete: %w", err)
		}
		return req, nil
	}

	command, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		return types.SwapRequest{}, err
	}

	raw, _ := cmd.Flags().GetBool("raw")
	if !raw && command.Input.Decimals < 0 {
		decimals, err := lookup.Decimals(ctx, solana.MustPublicKeyFromBase58(command.Input.Mint))
		if err != nil {
			return types.SwapRequest{}, fmt.Errorf("look up decimals of %s: %w", command.Input.Mint, err)
		}
		command.Input.Decimals = int32(decimals)
	}
	return command.SwapRequest(slippage, raw)
}

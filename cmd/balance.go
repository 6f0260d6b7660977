package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"jup-swap/pkg/balance"
	"jup-swap/pkg/numeric"
	"jup-swap/pkg/parser"
	"jup-swap/pkg/wallet"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [token]",
	Short: "Show the wallet balance of a token (SOL by default)",
	Long: `Show how much of a token the configured wallet holds.

Examples:
  jup-swap balance
  jup-swap balance USDC
  jup-swap balance DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263 --json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	symbol := "SOL"
	if len(args) == 1 {
		symbol = args[0]
	}
	token, err := parser.ResolveToken(symbol)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	w, err := wallet.Load(cfg.Wallet.EnvVar)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	checker := balance.NewChecker(rpc.New(cfg.RPC.URL), rpc.CommitmentType(cfg.RPC.Commitment))
	mint := solana.MustPublicKeyFromBase58(token.Mint)

	amount, err := checker.Of(ctx, w.PublicKey(), mint)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	if token.Decimals < 0 {
		decimals, err := checker.Decimals(ctx, mint)
		if err != nil {
			exitWithError(cmd, nil, err)
		}
		token.Decimals = int32(decimals)
	}
	raw := strconv.FormatUint(amount, 10)
	formatted := numeric.FromSmallestUnit(raw, token.Decimals)

	if jsonOutput {
		printJSON(map[string]interface{}{
			"wallet":   w.PublicKey().String(),
			"mint":     token.Mint,
			"symbol":   token.Symbol,
			"amount":   raw,
			"decimals": token.Decimals,
			"uiAmount": formatted,
		})
		return
	}

	fmt.Printf("\n  Wallet:  %s\n", color.CyanString(w.PublicKey().String()))
	fmt.Printf("  Balance: %s %s\n\n", formatted, color.YellowString(token.Symbol))
}

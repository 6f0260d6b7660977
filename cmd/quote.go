package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"jup-swap/pkg/balance"
	"jup-swap/pkg/numeric"
	"jup-swap/pkg/parser"
	"jup-swap/pkg/quote"
	"jup-swap/pkg/types"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [<amount> <input-token> to <output-token>]",
	Short: "Fetch and show a quote without building or submitting",
	Long: `Ask the aggregator for a route and print it. Nothing is signed or sent.

Examples:
  jup-swap quote 1 SOL to USDC
  jup-swap quote 250 USDC to BONK --slippage-bps 100
  jup-swap quote 1 SOL to USDC --json`,
	Run: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().BoolVar(&rawAmount, "raw", false, "Amount is already in smallest units")
	quoteCmd.Flags().IntVar(&slippageBps, "slippage-bps", 0, "Slippage tolerance in basis points (default from config)")
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	checker := balance.NewChecker(rpc.New(cfg.RPC.URL), rpc.CommitmentType(cfg.RPC.Commitment))
	req, err := requestFromArgs(ctx, cmd, args, cfg, checker)
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	q, err := newJupiterClient(cfg).GetQuote(ctx, req)
	if err == nil {
		q, err = quote.Normalize(q)
		if err != nil {
			err = &types.QuoteError{Reason: "normalize quote", Err: err}
		}
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		exitWithError(cmd, nil, err)
	}

	if jsonOutput {
		printJSON(q)
		return
	}
	displayQuote(q, req)
}

func displayQuote(q *quote.Quote, req types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:              %s %s\n", formatAmount(q.InAmount(), req.InputMint), color.YellowString(tokenLabel(req.InputMint)))
	fmt.Printf("  To:                ~%s %s\n", formatAmount(q.OutAmount(), req.OutputMint), color.YellowString(tokenLabel(req.OutputMint)))
	fmt.Printf("  Minimum Received:  %s %s\n", formatAmount(q.OtherAmountThreshold(), req.OutputMint), tokenLabel(req.OutputMint))
	fmt.Printf("  Price Impact:      %s%%\n", q.PriceImpactPct())
	fmt.Printf("  Slippage:          %d bps\n", req.SlippageBps)
	if slot := q.ContextSlot(); slot != 0 {
		fmt.Printf("  Context Slot:      %d\n", slot)
	}

	color.Cyan("\n  ROUTE")
	fmt.Println("  " + strings.Repeat("-", 56))
	for i, step := range q.RoutePlan() {
		fmt.Printf("  %d. %-14s %3d%%  %s -> %s\n",
			i+1,
			step.Label,
			step.Percent,
			tokenLabel(step.InputMint),
			tokenLabel(step.OutputMint))
		if step.FeeAmount != "" {
			fmt.Printf("     fee %s %s\n", formatAmount(step.FeeAmount, step.FeeMint), color.HiBlackString(tokenLabel(step.FeeMint)))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

// formatAmount renders a smallest-unit amount in token units when the mint is known
func formatAmount(amount, mint string) string {
	if amount == "" {
		return "-"
	}
	if tok, ok := parser.LookupMint(mint); ok {
		return numeric.FromSmallestUnit(amount, tok.Decimals)
	}
	return amount
}

func tokenLabel(mint string) string {
	if tok, ok := parser.LookupMint(mint); ok {
		return tok.Symbol
	}
	if len(mint) > 10 {
		return mint[:4] + "..." + mint[len(mint)-4:]
	}
	return mint
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jup-swap/pkg/parser"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the token aliases accepted by swap and quote",
	Long: `List the token symbols that can be used instead of a mint address.

Any other SPL token can be swapped by passing its mint address; amounts for
unknown mints must be given in smallest units with --raw.

Examples:
  jup-swap list-tokens
  jup-swap list-tokens --symbol US`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var filtered []parser.Token
	for _, token := range parser.KnownTokens {
		if filterSymbol == "" || strings.Contains(token.Symbol, strings.ToUpper(filterSymbol)) {
			filtered = append(filtered, token)
		}
	}

	if jsonOutput {
		printJSON(filtered)
		return
	}
	displayTokens(filtered)
}

func displayTokens(tokens []parser.Token) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 72))
	color.Green("                        SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 72))

	for _, token := range tokens {
		fmt.Printf("  %-10s  %2d decimals  %s\n",
			color.YellowString(token.Symbol),
			token.Decimals,
			color.HiBlackString(token.Mint))
	}

	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens))
}

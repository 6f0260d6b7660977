package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"

	"jup-swap/pkg/numeric"
	"jup-swap/pkg/types"
)

// Token is a mint with its display metadata. Decimals is -1 when unknown.
type Token struct {
	Symbol   string
	Mint     string
	Decimals int32
}

// KnownTokens are the aliases accepted in place of a mint address
var KnownTokens = []Token{
	{Symbol: "SOL", Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
	{Symbol: "USDC", Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	{Symbol: "USDT", Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
	{Symbol: "BONK", Mint: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Decimals: 5},
	{Symbol: "JUP", Mint: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Decimals: 6},
}

// Command is a parsed "<amount> <token> to <token>" swap command
type Command struct {
	Amount string
	Input  Token
	Output Token
}

var commandPattern = regexp.MustCompile(`(?i)^(?:swap\s+)?(\d+(?:\.\d+)?)\s+(\S+)\s+to\s+(\S+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 SOL to USDC"
//   - "0.5 sol to JUP"
//   - "1000 So11111111111111111111111111111111111111112 to USDC"
func ParseSwapCommand(command string) (*Command, error) {
	matches := commandPattern.FindStringSubmatch(strings.TrimSpace(command))
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 SOL to USDC')")
	}

	input, err := ResolveToken(matches[2])
	if err != nil {
		return nil, err
	}
	output, err := ResolveToken(matches[3])
	if err != nil {
		return nil, err
	}

	return &Command{Amount: matches[1], Input: input, Output: output}, nil
}

// ResolveToken maps an alias or a base58 mint to a Token
func ResolveToken(s string) (Token, error) {
	symbol := NormalizeTokenSymbol(s)
	for _, t := range KnownTokens {
		if t.Symbol == symbol || t.Mint == s {
			return t, nil
		}
	}

	if _, err := solana.PublicKeyFromBase58(s); err != nil {
		return Token{}, fmt.Errorf("unknown token %q: not an alias or a mint address", s)
	}
	return Token{Symbol: s, Mint: s, Decimals: -1}, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	aliases := map[string]string{
		"WSOL": "SOL",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}

// SwapRequest converts the command. With raw the amount is already in
// smallest units; otherwise it is scaled by the input token's decimals.
func (c *Command) SwapRequest(slippageBps int, raw bool) (types.SwapRequest, error) {
	req := types.SwapRequest{
		InputMint:   c.Input.Mint,
		OutputMint:  c.Output.Mint,
		SlippageBps: slippageBps,
	}

	decimals := int32(0)
	if !raw {
		if c.Input.Decimals < 0 {
			return req, fmt.Errorf("decimals of %s unknown, pass the amount in smallest units with --raw", c.Input.Mint)
		}
		decimals = c.Input.Decimals
	}

	amount, err := numeric.ToSmallestUnit(c.Amount, decimals)
	if err != nil {
		return req, fmt.Errorf("invalid amount %q: %w", c.Amount, err)
	}
	req.Amount = amount

	return req, req.Validate()
}

// LookupMint returns the known token for mint, if any
func LookupMint(mint string) (Token, bool) {
	for _, t := range KnownTokens {
		if t.Mint == mint {
			return t, true
		}
	}
	return Token{}, false
}

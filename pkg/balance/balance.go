// Package balance reads wallet holdings so a swap can be refused before any
// request reaches the aggregator.
package balance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// mintDecimalsOffset is the position of the decimals byte in an SPL mint account
const mintDecimalsOffset = 44

var nativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// InsufficientError is returned by Ensure when the wallet holds less than required
type InsufficientError struct {
	Mint      string
	Required  uint64
	Available uint64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient balance of %s: have %d, need %d", e.Mint, e.Available, e.Required)
}

// Checker queries balances over chain RPC
type Checker struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// NewChecker creates a checker reading at the given commitment, confirmed if empty
func NewChecker(client *rpc.Client, commitment rpc.CommitmentType) *Checker {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Checker{client: client, commitment: commitment}
}

// Of returns the balance of mint held by owner in smallest units. Wrapped SOL
// is read as the native lamport balance; a missing token account counts as zero.
func (c *Checker) Of(ctx context.Context, owner solana.PublicKey, mint solana.PublicKey) (uint64, error) {
	if mint.Equals(nativeMint) {
		balance, err := c.client.GetBalance(ctx, owner, c.commitment)
		if err != nil {
			return 0, fmt.Errorf("failed to get balance: %w", err)
		}
		return balance.Value, nil
	}

	tokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive associated token address: %w", err)
	}

	exists, err := c.accountExists(ctx, tokenAccount)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	accountInfo, err := c.client.GetTokenAccountBalance(ctx, tokenAccount, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}

	amount, err := strconv.ParseUint(accountInfo.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance: %w", err)
	}
	return amount, nil
}

// Ensure fails with *InsufficientError when owner holds less than amount of mint
func (c *Checker) Ensure(ctx context.Context, owner solana.PublicKey, mint solana.PublicKey, amount uint64) error {
	available, err := c.Of(ctx, owner, mint)
	if err != nil {
		return err
	}
	if available < amount {
		return &InsufficientError{Mint: mint.String(), Required: amount, Available: available}
	}
	return nil
}

// Decimals reads the decimals of an SPL mint from its account data
func (c *Checker) Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if mint.Equals(nativeMint) {
		return 9, nil
	}

	accountInfo, err := c.client.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get mint account info: %w", err)
	}

	data := accountInfo.Value.Data.GetBinary()
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("invalid mint account data")
	}
	return data[mintDecimalsOffset], nil
}

func (c *Checker) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	_, err := c.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get account info: %w", err)
	}
	return true, nil
}

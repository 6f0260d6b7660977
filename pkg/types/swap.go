package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MaxSlippageBps is 100% expressed in basis points
const MaxSlippageBps = 10000

// SwapRequest represents a single swap the pipeline should execute.
// Amount is in the smallest unit of the input asset.
type SwapRequest struct {
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	Amount      uint64 `json:"amount"`
	SlippageBps int    `json:"slippageBps"`
}

// Validate checks that a swap request has all required fields
func (r SwapRequest) Validate() error {
	if r.InputMint == "" {
		return fmt.Errorf("input mint is required")
	}
	if r.OutputMint == "" {
		return fmt.Errorf("output mint is required")
	}
	if _, err := solana.PublicKeyFromBase58(r.InputMint); err != nil {
		return fmt.Errorf("invalid input mint %q: %w", r.InputMint, err)
	}
	if _, err := solana.PublicKeyFromBase58(r.OutputMint); err != nil {
		return fmt.Errorf("invalid output mint %q: %w", r.OutputMint, err)
	}
	if r.InputMint == r.OutputMint {
		return fmt.Errorf("input and output mint must differ")
	}
	if r.Amount == 0 {
		return fmt.Errorf("amount must be greater than 0")
	}
	if r.SlippageBps < 0 || r.SlippageBps > MaxSlippageBps {
		return fmt.Errorf("slippage must be between 0 and %d bps, got %d", MaxSlippageBps, r.SlippageBps)
	}
	return nil
}

// SwapTransaction holds the serialized transaction returned by the build endpoint
type SwapTransaction struct {
	SerializedBlob string `json:"swapTransaction"`
}

// ExecutionResult is what a submitter hands back once the chain accepted the transaction
type ExecutionResult struct {
	TransactionID string `json:"txid"`
}

// ConfirmationState enumerates the outcomes of confirmation polling
type ConfirmationState string

const (
	ConfirmationPending   ConfirmationState = "pending"
	ConfirmationConfirmed ConfirmationState = "confirmed"
	ConfirmationFailed    ConfirmationState = "on_chain_failure"
	ConfirmationTimeout   ConfirmationState = "timeout"
)

// ConfirmationStatus is the verdict of the verifier for a single transaction id.
// Detail is only set for on-chain failures.
type ConfirmationStatus struct {
	State    ConfirmationState `json:"state"`
	Detail   string            `json:"detail,omitempty"`
	Attempts int               `json:"attempts"`
	Slot     uint64            `json:"slot,omitempty"`
}

// IsTerminal reports whether polling can stop
func (s ConfirmationStatus) IsTerminal() bool {
	return s.State == ConfirmationConfirmed || s.State == ConfirmationFailed
}

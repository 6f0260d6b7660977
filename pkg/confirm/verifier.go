// Package confirm polls the chain for the finality of a submitted transaction.
package confirm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"

	"jup-swap/pkg/retry"
	"jup-swap/pkg/types"
)

// PollOutcome classifies a single getTransaction call
type PollOutcome string

const (
	PollPending        PollOutcome = "pending"
	PollConfirmed      PollOutcome = "confirmed"
	PollFailed         PollOutcome = "failed"
	PollTransportError PollOutcome = "transport_error"
)

// Poll describes one attempt, handed to observers
type Poll struct {
	TransactionID string
	Attempt       int
	Outcome       PollOutcome
	Err           error
}

// Verifier polls getTransaction until the chain reports a terminal status
// or the attempt budget is used up
type Verifier struct {
	client     *rpc.Client
	policy     retry.Policy
	commitment rpc.CommitmentType
	observers  []func(Poll)
}

// Option customises a Verifier
type Option func(*Verifier)

// WithCommitment overrides the commitment level, confirmed by default
func WithCommitment(c rpc.CommitmentType) Option {
	return func(v *Verifier) {
		if c != "" {
			v.commitment = c
		}
	}
}

// WithObserver registers fn to be called after every poll
func WithObserver(fn func(Poll)) Option {
	return func(v *Verifier) { v.observers = append(v.observers, fn) }
}

// NewVerifier creates a verifier over client. policy.Attempts is the
// maximum number of polls and policy.Delay the spacing between them.
func NewVerifier(client *rpc.Client, policy retry.Policy, opts ...Option) *Verifier {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	v := &Verifier{
		client:     client,
		policy:     policy,
		commitment: rpc.CommitmentConfirmed,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type transactionMeta struct {
	Err any `json:"err"`
}

type transactionResult struct {
	Slot uint64           `json:"slot"`
	Meta *transactionMeta `json:"meta"`
}

// Verify polls for txid. Transport errors only use up an attempt; a result
// with or without an execution error ends polling immediately.
func (v *Verifier) Verify(ctx context.Context, txid string) types.ConfirmationStatus {
	for attempt := 1; attempt <= v.policy.Attempts; attempt++ {
		res, err := v.lookup(ctx, txid)
		switch {
		case err != nil:
			v.observe(Poll{TransactionID: txid, Attempt: attempt, Outcome: PollTransportError, Err: err})
		case res == nil:
			v.observe(Poll{TransactionID: txid, Attempt: attempt, Outcome: PollPending})
		case res.Meta != nil && res.Meta.Err != nil:
			v.observe(Poll{TransactionID: txid, Attempt: attempt, Outcome: PollFailed})
			return types.ConfirmationStatus{
				State:    types.ConfirmationFailed,
				Detail:   describe(res.Meta.Err),
				Attempts: attempt,
				Slot:     res.Slot,
			}
		default:
			v.observe(Poll{TransactionID: txid, Attempt: attempt, Outcome: PollConfirmed})
			return types.ConfirmationStatus{
				State:    types.ConfirmationConfirmed,
				Attempts: attempt,
				Slot:     res.Slot,
			}
		}

		if attempt < v.policy.Attempts {
			if err := retry.Sleep(ctx, v.policy.Delay); err != nil {
				return types.ConfirmationStatus{State: types.ConfirmationTimeout, Attempts: attempt}
			}
		}
	}

	return types.ConfirmationStatus{State: types.ConfirmationTimeout, Attempts: v.policy.Attempts}
}

// Attempts is the configured poll budget
func (v *Verifier) Attempts() int {
	return v.policy.Attempts
}

func (v *Verifier) lookup(ctx context.Context, txid string) (*transactionResult, error) {
	params := []interface{}{
		txid,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     v.commitment,
			"maxSupportedTransactionVersion": 0,
		},
	}

	var out *transactionResult
	if err := v.client.RPCCallForInto(ctx, &out, "getTransaction", params); err != nil {
		return nil, fmt.Errorf("getTransaction: %w", err)
	}
	return out, nil
}

func (v *Verifier) observe(p Poll) {
	for _, fn := range v.observers {
		fn(p)
	}
}

func describe(err any) string {
	if s, ok := err.(string); ok {
		return s
	}
	b, mErr := json.Marshal(err)
	if mErr != nil {
		return fmt.Sprintf("%v", err)
	}
	return string(b)
}

// Package submit contains submitters that send a built swap transaction to
// the chain directly instead of through the aggregator's execute endpoint.
package submit

import (
	"context"
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"jup-swap/pkg/types"
	"jup-swap/pkg/wallet"
)

// RPCSubmitter signs the aggregator's transaction locally and sends it over chain RPC
type RPCSubmitter struct {
	client *rpc.Client
	wallet *wallet.Wallet
	opts   rpc.TransactionOpts
}

// NewRPCSubmitter creates a submitter that signs with w
func NewRPCSubmitter(client *rpc.Client, w *wallet.Wallet, skipPreflight bool, commitment rpc.CommitmentType) *RPCSubmitter {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &RPCSubmitter{
		client: client,
		wallet: w,
		opts: rpc.TransactionOpts{
			SkipPreflight:       skipPreflight,
			PreflightCommitment: commitment,
		},
	}
}

// Submit decodes, signs and sends tx. Like the execute endpoint it is never
// retried, a resend could land the same swap twice.
func (s *RPCSubmitter) Submit(ctx context.Context, tx *types.SwapTransaction, userPublicKey solana.PublicKey) (*types.ExecutionResult, error) {
	if !userPublicKey.Equals(s.wallet.PublicKey()) {
		return nil, &types.SubmitError{Reason: fmt.Sprintf("transaction built for %s but wallet is %s", userPublicKey, s.wallet.PublicKey())}
	}

	raw, err := base64.StdEncoding.DecodeString(tx.SerializedBlob)
	if err != nil {
		return nil, &types.SubmitError{Reason: "decode transaction", Err: err}
	}

	decoded, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, &types.SubmitError{Reason: "unmarshal transaction", Err: err}
	}

	if err := s.wallet.Sign(decoded); err != nil {
		return nil, &types.SubmitError{Reason: "sign transaction", Err: err}
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, decoded, s.opts)
	if err != nil {
		return nil, &types.SubmitError{Reason: "send transaction", Err: err}
	}

	return &types.ExecutionResult{TransactionID: sig.String()}, nil
}

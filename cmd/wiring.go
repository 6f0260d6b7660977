package cmd

import (
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go/rpc"

	"jup-swap/config"
	"jup-swap/pkg/client"
	"jup-swap/pkg/confirm"
	"jup-swap/pkg/metrics"
	"jup-swap/pkg/retry"
	"jup-swap/pkg/submit"
	"jup-swap/pkg/swap"
	"jup-swap/pkg/wallet"
)

func newJupiterClient(c *config.Config) *client.JupiterClient {
	return client.NewJupiterClient(c.Aggregator.BaseURL,
		client.WithHTTPClient(&http.Client{Timeout: c.Aggregator.Timeout}),
		client.WithRateLimit(c.Aggregator.RequestsPerSecond),
		client.WithQuoteRetry(retry.Policy{Attempts: c.Retry.QuoteAttempts, Delay: c.Retry.QuoteDelay}),
		client.WithBuildOptions(client.BuildOptions{
			ComputeUnitPriceMicroLamports: c.Build.ComputeUnitPriceMicroLamports,
			MaxAccounts:                   c.Build.MaxAccounts,
		}),
		client.WithPaths(c.Aggregator.BuildPath, c.Aggregator.ExecutePath),
	)
}

func newVerifier(c *config.Config, rpcClient *rpc.Client) *confirm.Verifier {
	return confirm.NewVerifier(rpcClient,
		retry.Policy{Attempts: c.Retry.ConfirmAttempts, Delay: c.Retry.ConfirmInterval},
		confirm.WithCommitment(rpc.CommitmentType(c.RPC.Commitment)),
		confirm.WithObserver(metrics.ObservePoll),
		confirm.WithObserver(func(p confirm.Poll) {
			log.Debug().
				Str("txid", p.TransactionID).
				Int("attempt", p.Attempt).
				Str("result", string(p.Outcome)).
				AnErr("error", p.Err).
				Msg("confirmation poll")
		}),
	)
}

// newPipeline wires the stages for the configured submit mode. rpcClient is
// shared with the caller's balance checks.
func newPipeline(c *config.Config, w *wallet.Wallet, rpcClient *rpc.Client, sinks ...swap.Sink) (*swap.Pipeline, error) {
	jup := newJupiterClient(c)

	var submitter swap.Submitter
	switch c.Submit.Mode {
	case config.SubmitModeExecute:
		submitter = jup
	case config.SubmitModeRPC:
		submitter = submit.NewRPCSubmitter(rpcClient, w, c.Submit.SkipPreflight, rpc.CommitmentType(c.RPC.Commitment))
	default:
		return nil, fmt.Errorf("unknown submit mode %q", c.Submit.Mode)
	}

	opts := []swap.Option{swap.WithSink(swap.NewLogSink(log)), swap.WithSink(metrics.Sink{})}
	for _, s := range sinks {
		opts = append(opts, swap.WithSink(s))
	}

	return swap.New(w.PublicKey(), jup, jup, submitter, newVerifier(c, rpcClient), opts...), nil
}

// Package swap runs a single quote, build, submit and confirm sequence
// against the aggregator and the chain.
package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jup-swap/pkg/quote"
	"jup-swap/pkg/types"
)

// QuoteProvider fetches a priced route for a request
type QuoteProvider interface {
	GetQuote(ctx context.Context, req types.SwapRequest) (*quote.Quote, error)
}

// Builder turns a normalized quote into an unsigned transaction blob
type Builder interface {
	BuildSwap(ctx context.Context, q *quote.Quote, userPublicKey solana.PublicKey) (*types.SwapTransaction, error)
}

// Submitter hands a built transaction off for execution
type Submitter interface {
	Submit(ctx context.Context, tx *types.SwapTransaction, userPublicKey solana.PublicKey) (*types.ExecutionResult, error)
}

// Verifier polls the chain for the outcome of a transaction
type Verifier interface {
	Verify(ctx context.Context, txid string) types.ConfirmationStatus
}

// Result is everything a run produced up to the point it stopped
type Result struct {
	RunID        string
	Request      types.SwapRequest
	State        State
	Quote        *quote.Quote
	TxID         string
	Confirmation types.ConfirmationStatus
	Elapsed      time.Duration
}

// Pipeline wires the stages of one swap. It holds no per-run state, so a
// single Pipeline may serve concurrent runs.
type Pipeline struct {
	owner     solana.PublicKey
	quotes    QuoteProvider
	builder   Builder
	submitter Submitter
	verifier  Verifier
	sinks     []Sink
	newRunID  func() string
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithSink adds an event consumer
func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, s) }
}

// WithRunID overrides run id generation
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newRunID = fn }
}

// New creates a pipeline acting for owner
func New(owner solana.PublicKey, quotes QuoteProvider, builder Builder, submitter Submitter, verifier Verifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		owner:     owner,
		quotes:    quotes,
		builder:   builder,
		submitter: submitter,
		verifier:  verifier,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the stages strictly in order. The returned Result is never
// nil; on error it describes how far the run got.
func (p *Pipeline) Run(ctx context.Context, req types.SwapRequest) (*Result, error) {
	r := &run{
		p:       p,
		started: time.Now(),
		res: &Result{
			RunID:   p.newRunID(),
			Request: req,
			State:   StateIdle,
		},
	}
	err := r.execute(ctx)
	r.res.Elapsed = time.Since(r.started)
	return r.res, err
}

type run struct {
	p          *Pipeline
	res        *Result
	started    time.Time
	stageStart time.Time
}

func (r *run) execute(ctx context.Context) error {
	req := r.res.Request
	if err := req.Validate(); err != nil {
		return r.fail(types.StageQuote, &types.QuoteError{Reason: "invalid request", Err: err})
	}

	r.advance(StateQuoteRequested, types.StageQuote, zerolog.DebugLevel, "requesting quote", map[string]any{
		"input_mint":   req.InputMint,
		"output_mint":  req.OutputMint,
		"amount":       req.Amount,
		"slippage_bps": req.SlippageBps,
	})
	q, err := r.p.quotes.GetQuote(ctx, req)
	if err != nil {
		return r.fail(types.StageQuote, err)
	}
	if q == nil {
		return r.fail(types.StageQuote, &types.QuoteError{Reason: "provider returned no quote"})
	}
	if err := q.Validate(); err != nil {
		return r.fail(types.StageQuote, &types.QuoteError{Reason: "unusable quote", Err: err})
	}
	r.advance(StateQuoteReceived, types.StageQuote, zerolog.InfoLevel, "quote received", map[string]any{
		"out_amount":       q.OutAmount(),
		"price_impact_pct": q.PriceImpactPct(),
		"route_steps":      len(q.RoutePlan()),
	})

	nq, err := quote.Normalize(q)
	if err != nil {
		return r.fail(types.StageQuote, &types.QuoteError{Reason: "normalize quote", Err: err})
	}
	r.res.Quote = nq
	r.advance(StateNormalized, types.StageQuote, zerolog.DebugLevel, "quote normalized", nil)

	tx, err := r.p.builder.BuildSwap(ctx, nq, r.p.owner)
	if err != nil {
		return r.fail(types.StageBuild, err)
	}
	if tx == nil || tx.SerializedBlob == "" {
		return r.fail(types.StageBuild, &types.BuildError{Reason: "builder returned no transaction"})
	}
	r.advance(StateBuilt, types.StageBuild, zerolog.InfoLevel, "swap transaction built", map[string]any{
		"blob_bytes": len(tx.SerializedBlob),
	})

	exec, err := r.p.submitter.Submit(ctx, tx, r.p.owner)
	if err != nil {
		return r.fail(types.StageSubmit, err)
	}
	if exec == nil || exec.TransactionID == "" {
		return r.fail(types.StageSubmit, &types.SubmitError{Reason: "no transaction id returned"})
	}
	r.res.TxID = exec.TransactionID
	r.advance(StateSubmitted, types.StageSubmit, zerolog.InfoLevel, "transaction submitted", map[string]any{
		"txid": exec.TransactionID,
	})

	r.advance(StateVerifying, types.StageConfirm, zerolog.DebugLevel, "waiting for confirmation", map[string]any{
		"txid": exec.TransactionID,
	})
	status := r.p.verifier.Verify(ctx, exec.TransactionID)
	r.res.Confirmation = status

	fields := map[string]any{"txid": exec.TransactionID, "attempts": status.Attempts}
	switch status.State {
	case types.ConfirmationConfirmed:
		fields["slot"] = status.Slot
		r.advance(StateConfirmed, types.StageConfirm, zerolog.InfoLevel, "transaction confirmed", fields)
		return nil
	case types.ConfirmationFailed:
		err := &types.OnChainFailure{TransactionID: exec.TransactionID, Detail: status.Detail}
		r.emit(StateOnChainFailure, types.StageConfirm, zerolog.ErrorLevel, "transaction failed on-chain", fields, err)
		return err
	default:
		err := &types.VerificationTimeout{TransactionID: exec.TransactionID, Attempts: status.Attempts}
		r.emit(StateTimeout, types.StageConfirm, zerolog.WarnLevel, "confirmation timed out", fields, err)
		return err
	}
}

func (r *run) advance(next State, stage types.Stage, level zerolog.Level, msg string, fields map[string]any) {
	r.emit(next, stage, level, msg, fields, nil)
}

func (r *run) fail(stage types.Stage, err error) error {
	r.emit(StateFailed, stage, zerolog.ErrorLevel, fmt.Sprintf("%s stage failed", stage), nil, err)
	return err
}

func (r *run) emit(next State, stage types.Stage, level zerolog.Level, msg string, fields map[string]any, err error) {
	now := time.Now()
	if r.stageStart.IsZero() {
		r.stageStart = r.started
	}
	e := Event{
		RunID:    r.res.RunID,
		Time:     now,
		Stage:    stage,
		State:    next,
		Level:    level,
		Message:  msg,
		Duration: now.Sub(r.stageStart),
		Fields:   fields,
		Err:      err,
	}
	r.stageStart = now
	r.res.State = next
	for _, s := range r.p.sinks {
		s.Emit(e)
	}
}

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jup-swap/pkg/quote"
	"jup-swap/pkg/retry"
	"jup-swap/pkg/types"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

const quoteBody = `{"inputMint":"So11111111111111111111111111111111111111112","outputMint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","inAmount":5000000000,"outAmount":"123456","otherAmountThreshold":120369,"swapMode":"ExactIn","routePlan":[{"swapInfo":{"ammKey":"pool","label":"Whirlpool","inAmount":5000000000,"outAmount":123456,"feeAmount":1500},"percent":100}],"contextSlot":42,"swapUsdValue":812.5}`

var fastRetry = retry.Policy{Attempts: 3, Delay: 5 * time.Millisecond}

func testRequest() types.SwapRequest {
	return types.SwapRequest{InputMint: solMint, OutputMint: usdcMint, Amount: 5_000_000_000, SlippageBps: 250}
}

func newTestClient(srv *httptest.Server, opts ...Option) *JupiterClient {
	opts = append([]Option{WithHTTPClient(srv.Client()), WithQuoteRetry(fastRetry), WithRateLimit(0)}, opts...)
	return NewJupiterClient(srv.URL, opts...)
}

func TestGetQuoteSendsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, solMint, q.Get("inputMint"))
		assert.Equal(t, usdcMint, q.Get("outputMint"))
		assert.Equal(t, "5000000000", q.Get("amount"))
		assert.Equal(t, "250", q.Get("slippageBps"))
		_, _ = io.WriteString(w, quoteBody)
	}))
	defer srv.Close()

	q, err := newTestClient(srv).GetQuote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "123456", q.OutAmount())
	assert.Len(t, q.RoutePlan(), 1)
}

func TestGetQuoteRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, quoteBody)
	}))
	defer srv.Close()

	q, err := newTestClient(srv).GetQuote(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "123456", q.OutAmount())
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetQuoteGivesUpAfterBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "<html>upstream down</html>")
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetQuote(context.Background(), testRequest())
	var qe *types.QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int32(3), calls.Load())
	require.NotNil(t, qe.HTTP)
	assert.Equal(t, http.StatusServiceUnavailable, qe.HTTP.StatusCode)
}

func TestGetQuoteRetriesConnectionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv)
	srv.Close()

	_, err := c.GetQuote(context.Background(), testRequest())
	var qe *types.QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestGetQuoteTerminalFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"aggregator error status", http.StatusBadRequest, `{"error":"Could not find any route","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`},
		{"aggregator error field", http.StatusOK, `{"error":"Token not tradable"}`},
		{"zero outAmount", http.StatusOK, `{"outAmount":"0","routePlan":[{"swapInfo":{},"percent":100}]}`},
		{"missing outAmount", http.StatusOK, `{"inAmount":"1","routePlan":[{"swapInfo":{},"percent":100}]}`},
		{"empty route", http.StatusOK, `{"outAmount":"10","routePlan":[]}`},
		{"malformed", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			q, err := newTestClient(srv).GetQuote(context.Background(), testRequest())
			assert.Nil(t, q)
			var qe *types.QuoteError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, int32(1), calls.Load(), "terminal failures must not be retried")
		})
	}
}

func normalizedQuote(t *testing.T) *quote.Quote {
	t.Helper()
	q, err := quote.Decode(strings.NewReader(quoteBody))
	require.NoError(t, err)
	n, err := quote.Normalize(q)
	require.NoError(t, err)
	return n
}

func TestBuildSwapPayload(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/swap", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, owner.String(), body["userPublicKey"])
		assert.Equal(t, true, body["wrapUnwrapSOL"])
		assert.Equal(t, true, body["useSharedAccounts"])
		assert.Equal(t, true, body["dynamicComputeUnitLimit"])
		assert.Equal(t, false, body["asLegacyTransaction"])
		assert.Equal(t, float64(54), body["maxAccounts"])
		assert.Equal(t, float64(50000), body["computeUnitPriceMicroLamports"])

		qr := body["quoteResponse"].(map[string]any)
		assert.Equal(t, "5000000000", qr["inAmount"])
		assert.Equal(t, "120369", qr["otherAmountThreshold"])
		assert.Equal(t, "812.5", qr["swapUsdValue"])
		assert.Equal(t, "ExactIn", qr["swapMode"])

		_, _ = io.WriteString(w, `{"swapTransaction":"BASE64BLOB","lastValidBlockHeight":1}`)
	}))
	defer srv.Close()

	tx, err := newTestClient(srv).BuildSwap(context.Background(), normalizedQuote(t), owner)
	require.NoError(t, err)
	assert.Equal(t, "BASE64BLOB", tx.SerializedBlob)
}

func TestBuildSwapCustomPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap-instructions", r.URL.Path)
		_, _ = io.WriteString(w, `{"swapTransaction":"BLOB"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, WithPaths("/swap-instructions", ""))
	tx, err := c.BuildSwap(context.Background(), normalizedQuote(t), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "BLOB", tx.SerializedBlob)
}

func TestBuildSwapFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"simulation failed"}`},
		{"missing blob", http.StatusOK, `{"lastValidBlockHeight":1}`},
		{"malformed", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).BuildSwap(context.Background(), normalizedQuote(t), solana.NewWallet().PublicKey())
			var be *types.BuildError
			require.ErrorAs(t, err, &be)
			require.NotNil(t, be.HTTP)
			assert.Equal(t, tt.body, be.HTTP.ResponseBody)
			assert.Equal(t, tt.status, be.HTTP.StatusCode)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestSubmit(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/execute", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "BASE64BLOB", body["swapTransaction"])
		assert.Equal(t, owner.String(), body["userPublicKey"])
		assert.Equal(t, true, body["dynamicComputeUnitLimit"])
		_, _ = io.WriteString(w, `{"txid":"abcd"}`)
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Submit(context.Background(), &types.SwapTransaction{SerializedBlob: "BASE64BLOB"}, owner)
	require.NoError(t, err)
	assert.Equal(t, "abcd", res.TransactionID)
}

func TestSubmitFailuresAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad gateway", http.StatusBadGateway, ``},
		{"missing txid", http.StatusOK, `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv).Submit(context.Background(), &types.SwapTransaction{SerializedBlob: "BLOB"}, solana.NewWallet().PublicKey())
			var se *types.SubmitError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, quoteBody)
	}))
	defer srv.Close()

	c := newTestClient(srv, WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.GetQuote(context.Background(), testRequest())
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "no route", errorMessage([]byte(`{"error":"no route"}`)))
	assert.Equal(t, "bad", errorMessage([]byte(`{"message":"bad"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte(" plain text ")))
	assert.Equal(t, "empty body", errorMessage(nil))
}

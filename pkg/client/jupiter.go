package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/time/rate"

	"jup-swap/pkg/quote"
	"jup-swap/pkg/retry"
	"jup-swap/pkg/types"
)

const (
	DefaultBaseURL     = "https://quote-api.jup.ag/v6"
	DefaultBuildPath   = "/swap"
	DefaultExecutePath = "/swap/execute"
	DefaultTimeout     = 10 * time.Second
)

// BuildOptions is the fixed configuration block sent with every build request
type BuildOptions struct {
	ComputeUnitPriceMicroLamports int64
	MaxAccounts                   int
}

// DefaultBuildOptions matches what the aggregator recommends for shared-account routes
var DefaultBuildOptions = BuildOptions{
	ComputeUnitPriceMicroLamports: 50000,
	MaxAccounts:                   54,
}

// JupiterClient talks to the swap aggregator's quote, build and execute endpoints
type JupiterClient struct {
	baseURL     string
	buildPath   string
	executePath string
	http        *http.Client
	limiter     *rate.Limiter
	quoteRetry  retry.Policy
	build       BuildOptions
}

// Option customises a JupiterClient
type Option func(*JupiterClient)

// WithHTTPClient replaces the default http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *JupiterClient) { c.http = hc }
}

// WithRateLimit caps outbound requests per second. Zero disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *JupiterClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithQuoteRetry sets the retry policy for transport failures of the quote call
func WithQuoteRetry(p retry.Policy) Option {
	return func(c *JupiterClient) { c.quoteRetry = p }
}

// WithBuildOptions overrides the build configuration block
func WithBuildOptions(o BuildOptions) Option {
	return func(c *JupiterClient) { c.build = o }
}

// WithPaths overrides the build and execute endpoint paths. Empty values keep the defaults.
func WithPaths(buildPath, executePath string) Option {
	return func(c *JupiterClient) {
		if buildPath != "" {
			c.buildPath = buildPath
		}
		if executePath != "" {
			c.executePath = executePath
		}
	}
}

// NewJupiterClient creates a new aggregator client
func NewJupiterClient(baseURL string, opts ...Option) *JupiterClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &JupiterClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		buildPath:   DefaultBuildPath,
		executePath: DefaultExecutePath,
		http:        &http.Client{Timeout: DefaultTimeout},
		quoteRetry:  retry.DefaultPolicy,
		build:       DefaultBuildOptions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetQuote fetches a priced route for the request. Transport failures are
// retried according to the quote policy; anything the aggregator actually
// answered with is final.
func (c *JupiterClient) GetQuote(ctx context.Context, req types.SwapRequest) (*quote.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint)
	params.Set("outputMint", req.OutputMint)
	params.Set("amount", strconv.FormatUint(req.Amount, 10))
	params.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	u := c.baseURL + "/quote?" + params.Encode()

	var (
		result     *quote.Quote
		lastDetail *types.HTTPDetail
	)
	err := retry.Do(ctx, c.quoteRetry, func(ctx context.Context, attempt int) error {
		status, body, detail, err := c.do(ctx, http.MethodGet, u, nil)
		lastDetail = detail
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}

		if status < 200 || status >= 300 {
			if len(bytes.TrimSpace(body)) > 0 && json.Valid(body) {
				return retry.Permanent(&types.QuoteError{Reason: "aggregator rejected quote: " + errorMessage(body), HTTP: detail})
			}
			return fmt.Errorf("quote endpoint returned status %d", status)
		}

		q, err := quote.Decode(bytes.NewReader(body))
		if err != nil {
			return retry.Permanent(&types.QuoteError{Reason: "malformed quote response", HTTP: detail, Err: err})
		}
		if err := q.Validate(); err != nil {
			return retry.Permanent(&types.QuoteError{Reason: "unusable quote", HTTP: detail, Err: err})
		}
		result = q
		return nil
	})
	if err != nil {
		var qe *types.QuoteError
		if errors.As(err, &qe) {
			return nil, qe
		}
		return nil, &types.QuoteError{Reason: "quote request failed", HTTP: lastDetail, Err: err}
	}

	return result, nil
}

// BuildSwap turns a normalized quote into a serialized transaction. Build
// failures are not retried: the same request will not succeed without a new quote.
func (c *JupiterClient) BuildSwap(ctx context.Context, q *quote.Quote, userPublicKey solana.PublicKey) (*types.SwapTransaction, error) {
	payload := map[string]any{
		"quoteResponse":                 q,
		"userPublicKey":                 userPublicKey.String(),
		"wrapUnwrapSOL":                 true,
		"useSharedAccounts":             true,
		"computeUnitPriceMicroLamports": c.build.ComputeUnitPriceMicroLamports,
		"asLegacyTransaction":           false,
		"dynamicComputeUnitLimit":       true,
		"maxAccounts":                   c.build.MaxAccounts,
	}

	status, body, detail, err := c.do(ctx, http.MethodPost, c.baseURL+c.buildPath, payload)
	if err != nil {
		return nil, &types.BuildError{Reason: "build request failed", HTTP: detail, Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &types.BuildError{Reason: "build endpoint rejected request: " + errorMessage(body), HTTP: detail}
	}

	var resp struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.BuildError{Reason: "malformed build response", HTTP: detail, Err: err}
	}
	if resp.SwapTransaction == "" {
		return nil, &types.BuildError{Reason: "response has no swapTransaction", HTTP: detail}
	}

	return &types.SwapTransaction{SerializedBlob: resp.SwapTransaction}, nil
}

// Submit hands the transaction blob to the aggregator's execute endpoint.
// Never retried: resending an accepted transaction risks a duplicate swap.
func (c *JupiterClient) Submit(ctx context.Context, tx *types.SwapTransaction, userPublicKey solana.PublicKey) (*types.ExecutionResult, error) {
	payload := map[string]any{
		"swapTransaction":         tx.SerializedBlob,
		"userPublicKey":           userPublicKey.String(),
		"dynamicComputeUnitLimit": true,
	}

	status, body, detail, err := c.do(ctx, http.MethodPost, c.baseURL+c.executePath, payload)
	if err != nil {
		return nil, &types.SubmitError{Reason: "execute request failed", HTTP: detail, Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, &types.SubmitError{Reason: "execute endpoint rejected transaction: " + errorMessage(body), HTTP: detail}
	}

	var resp struct {
		TxID string `json:"txid"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.SubmitError{Reason: "malformed execute response", HTTP: detail, Err: err}
	}
	if resp.TxID == "" {
		return nil, &types.SubmitError{Reason: "response has no txid", HTTP: detail}
	}

	return &types.ExecutionResult{TransactionID: resp.TxID}, nil
}

// do sends one request and reads the whole body. The returned detail is
// always populated with whatever is known about the exchange.
func (c *JupiterClient) do(ctx context.Context, method, u string, payload any) (int, []byte, *types.HTTPDetail, error) {
	detail := &types.HTTPDetail{Method: method, URL: u}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, detail, fmt.Errorf("marshal request: %w", err)
		}
		detail.RequestBody = string(data)
		reqBody = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, detail, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, nil, detail, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, detail, err
	}
	defer resp.Body.Close()

	detail.StatusCode = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, detail, fmt.Errorf("read response: %w", err)
	}
	detail.ResponseBody = string(body)

	return resp.StatusCode, body, detail, nil
}

// errorMessage pulls a human readable message out of an error body, falling back to the raw text
func errorMessage(body []byte) string {
	var errorResp map[string]any
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if message, ok := errorResp["error"].(string); ok {
			return message
		}
		if message, ok := errorResp["message"].(string); ok {
			return message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty body"
	}
	return text
}

// Package quote models a priced route returned by the aggregator.
//
// A Quote keeps the complete decoded response so that it can be echoed back
// to the build endpoint without dropping fields this package does not know
// about. Typed accessors read the interesting parts.
package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"jup-swap/pkg/numeric"
)

// RouteStep is a single pool hop of the route plan
type RouteStep struct {
	SourcePool string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
	Percent    int    `json:"percent"`
}

// Quote wraps the raw aggregator response
type Quote struct {
	raw map[string]any
}

// Decode reads a quote from r. Numbers are kept as json.Number so no
// precision is lost before normalization.
func Decode(r io.Reader) (*Quote, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode quote: empty body")
	}
	return &Quote{raw: raw}, nil
}

// FromMap builds a quote over an already decoded response
func FromMap(raw map[string]any) *Quote {
	return &Quote{raw: raw}
}

// MarshalJSON echoes the full response, unknown fields included
func (q *Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.raw)
}

// ErrorMessage returns the aggregator's explicit error field, if any
func (q *Quote) ErrorMessage() string {
	v, ok := q.raw["error"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func (q *Quote) InputMint() string  { return q.str("inputMint") }
func (q *Quote) OutputMint() string { return q.str("outputMint") }
func (q *Quote) SwapMode() string   { return q.str("swapMode") }

func (q *Quote) InAmount() string             { return q.amount(q.raw, "inAmount") }
func (q *Quote) OutAmount() string            { return q.amount(q.raw, "outAmount") }
func (q *Quote) OtherAmountThreshold() string { return q.amount(q.raw, "otherAmountThreshold") }
func (q *Quote) SwapUsdValue() string         { return q.amount(q.raw, "swapUsdValue") }
func (q *Quote) PriceImpactPct() string       { return q.amount(q.raw, "priceImpactPct") }

// ContextSlot is the slot the aggregator priced the route at
func (q *Quote) ContextSlot() uint64 {
	s := q.amount(q.raw, "contextSlot")
	slot, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return slot
}

// RoutePlan returns the ordered pool hops of the route
func (q *Quote) RoutePlan() []RouteStep {
	plan, ok := q.raw["routePlan"].([]any)
	if !ok {
		return nil
	}

	steps := make([]RouteStep, 0, len(plan))
	for _, entry := range plan {
		hop, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		step := RouteStep{}
		if p, err := numeric.Canonical(hop["percent"]); err == nil {
			step.Percent, _ = strconv.Atoi(p)
		}
		if info, ok := hop["swapInfo"].(map[string]any); ok {
			step.SourcePool, _ = info["ammKey"].(string)
			step.Label, _ = info["label"].(string)
			step.InputMint, _ = info["inputMint"].(string)
			step.OutputMint, _ = info["outputMint"].(string)
			step.FeeMint, _ = info["feeMint"].(string)
			step.InAmount = q.amount(info, "inAmount")
			step.OutAmount = q.amount(info, "outAmount")
			step.FeeAmount = q.amount(info, "feeAmount")
		}
		steps = append(steps, step)
	}
	return steps
}

// Validate enforces the invariants every usable quote must satisfy
func (q *Quote) Validate() error {
	if msg := q.ErrorMessage(); msg != "" {
		return fmt.Errorf("aggregator error: %s", msg)
	}
	out, ok := q.raw["outAmount"]
	if !ok || out == nil {
		return fmt.Errorf("missing outAmount")
	}
	if !numeric.Positive(q.OutAmount()) {
		return fmt.Errorf("outAmount must be positive, got %q", q.OutAmount())
	}
	if len(q.RoutePlan()) == 0 {
		return fmt.Errorf("empty route plan")
	}
	return nil
}

func (q *Quote) str(key string) string {
	s, _ := q.raw[key].(string)
	return s
}

func (q *Quote) amount(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, err := numeric.Canonical(v)
	if err != nil {
		return ""
	}
	return s
}

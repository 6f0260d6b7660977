package quote

import (
	"fmt"

	"jup-swap/pkg/numeric"
)

// The build endpoint rounds amounts it receives as native numbers, so every
// amount-bearing field is sent back as a decimal string.
var (
	amountFields   = []string{"inAmount", "outAmount", "otherAmountThreshold", "swapUsdValue"}
	swapInfoFields = []string{"inAmount", "outAmount", "feeAmount"}
)

// Normalize returns a copy of q with all amount fields in canonical
// decimal-string form. q itself is left untouched.
func Normalize(q *Quote) (*Quote, error) {
	raw, _ := clone(q.raw).(map[string]any)
	if raw == nil {
		raw = map[string]any{}
	}

	if err := canonicalize(raw, amountFields, ""); err != nil {
		return nil, err
	}

	if plan, ok := raw["routePlan"].([]any); ok {
		for i, entry := range plan {
			hop, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			info, ok := hop["swapInfo"].(map[string]any)
			if !ok {
				continue
			}
			if err := canonicalize(info, swapInfoFields, fmt.Sprintf("routePlan[%d].swapInfo.", i)); err != nil {
				return nil, err
			}
		}
	}

	return &Quote{raw: raw}, nil
}

func canonicalize(m map[string]any, fields []string, prefix string) error {
	for _, field := range fields {
		v, ok := m[field]
		if !ok || v == nil {
			continue
		}
		s, err := numeric.Canonical(v)
		if err != nil {
			return fmt.Errorf("normalize %s%s: %w", prefix, field, err)
		}
		m[field] = s
	}
	return nil
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = clone(val)
		}
		return out
	default:
		return v
	}
}

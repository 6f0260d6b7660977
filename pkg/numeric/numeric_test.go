package numeric

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string passthrough", "123456", "123456"},
		{"string kept verbatim", "0.10", "0.10"},
		{"json integer", json.Number("5000000000"), "5000000000"},
		{"json large integer", json.Number("18446744073709551615123"), "18446744073709551615123"},
		{"json exponent", json.Number("1e3"), "1000"},
		{"json fraction", json.Number("0.0123"), "0.0123"},
		{"float integer", float64(5000000000), "5000000000"},
		{"float fraction", 0.1, "0.1"},
		{"int", 42, "42"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Canonical(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestCanonicalRejects(t *testing.T) {
	_, err := Canonical(true)
	assert.Error(t, err)

	_, err = Canonical(json.Number("abc"))
	assert.Error(t, err)
}

func TestPositive(t *testing.T) {
	assert.True(t, Positive("123456"))
	assert.True(t, Positive("0.0001"))
	assert.False(t, Positive("0"))
	assert.False(t, Positive("-5"))
	assert.False(t, Positive(""))
	assert.False(t, Positive("abc"))
}

func TestToSmallestUnit(t *testing.T) {
	got, err := ToSmallestUnit("5", 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000_000), got)

	got, err = ToSmallestUnit("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), got)

	_, err = ToSmallestUnit("0.0000001", 6)
	assert.Error(t, err)

	_, err = ToSmallestUnit("0", 6)
	assert.Error(t, err)
}

func TestFromSmallestUnit(t *testing.T) {
	assert.Equal(t, "5", FromSmallestUnit("5000000000", 9))
	assert.Equal(t, "0.123456", FromSmallestUnit("123456", 6))
}

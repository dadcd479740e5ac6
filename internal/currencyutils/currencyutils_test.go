package currencyutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1,234", "1234"},
		{"1'234.56", "1234.56"},
		{"CHF 1'234.56", "1234.56"},
		{"€1.234,56", "1234.56"},
		{"$1,234.56", "1234.56"},
		{"-42.50", "-42.5"},
		{"", "0"},
		{"  ", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	_, err := ParseAmount("not a number")
	assert.Error(t, err)
}

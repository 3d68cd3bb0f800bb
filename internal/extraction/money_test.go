package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{"dollar sign and commas", "$12,345.00", 12345.00, true},
		{"bare number", "950", 950, true},
		{"decimal only", "1234.56", 1234.56, true},
		{"negative passes through", "-$25.00", -25.00, true},
		{"not sold", "Not Sold", 0, false},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"symbols only", "$,", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, ok := ParseMoney(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, amount, 1e-9)
			}
		})
	}
}

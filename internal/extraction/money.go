package extraction

import (
	"strconv"
	"strings"
)

// ParseMoney normalizes a currency-like string ("$12,345.00") to its numeric
// amount. It returns false on empty input or conversion failure. Negative
// values pass through uninterpreted; validity is the caller's call.
func ParseMoney(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

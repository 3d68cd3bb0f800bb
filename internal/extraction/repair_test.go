package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"spaced surname with suffix", "B A R N ER DAVID W", "BARNER DAVID W"},
		{"fully spaced word", "S M I T H", "SMITH"},
		{"common first name not absorbed", "S M I T H MARI", "SMITH MARI"},
		{"stray letter before long word", "D ESCRIPTION", "DESCRIPTION"},
		{"normal name untouched", "SMITH JOHN", "SMITH JOHN"},
		{"corporate name untouched", "ACME HOLDINGS LLC", "ACME HOLDINGS LLC"},
		{"collapses whitespace runs", "SMITH   JOHN", "SMITH JOHN"},
		{"single letter alone kept", "SMITH JOHN W", "SMITH JOHN W"},
		{"empty input", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RepairName(tc.input))
		})
	}
}

func TestRepairName_Idempotent(t *testing.T) {
	inputs := []string{
		"B A R N ER DAVID W",
		"S M I T H MARI",
		"D ESCRIPTION",
		"SMITH JOHN",
		"8 1 5 3RD AVE",
		"",
	}

	for _, in := range inputs {
		once := RepairName(in)
		assert.Equal(t, once, RepairName(once), "repair of %q must be idempotent", in)
	}
}

func TestRepairAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"spaced house number", "8 1 5 3RD AVE", "815 3RD AVE"},
		{"spaced digits then two-digit tail", "1 2 34 MAIN ST", "1234 MAIN ST"},
		{"one digit then two-digit tail", "8 15 3RD AVE", "815 3RD AVE"},
		{"normal address untouched", "123 MAIN ST", "123 MAIN ST"},
		{"spaced street name repaired", "815 M A P LE DR", "815 MAPLE DR"},
		{"house number only", "8 1 5", "815"},
		{"single digit not joined", "8 MAIN ST", "8 MAIN ST"},
		{"empty input", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RepairAddress(tc.input))
		})
	}
}

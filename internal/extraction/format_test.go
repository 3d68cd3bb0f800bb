package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		firstRow []string
		pageText string
		expected Format
	}{
		{
			name:     "repository header row",
			firstRow: []string{"CAMA#", "REPUTED OWNER", "ADDRESS", "MAP NUMBER", "LAND USE"},
			expected: FormatRepository,
		},
		{
			name:     "judicial via winning bid column",
			firstRow: []string{"", "Control #", "Owner", "Map #", "Description", "Land Use", "Winning Bid", "Winning Bidder"},
			expected: FormatJudicial,
		},
		{
			name:     "upset via page text",
			pageText: "2025 UPSET TAX SALE\nApproximate upset price listed per parcel",
			expected: FormatUpset,
		},
		{
			name:     "upset via control number header",
			firstRow: []string{"", "CONTROL NO", "OWNER NAME"},
			expected: FormatUpset,
		},
		{
			name:     "repository via literal mention",
			pageText: "BLAIR COUNTY REPOSITORY LIST",
			expected: FormatRepository,
		},
		{
			name:     "judicial via literal mention",
			pageText: "NOTICE OF JUDICIAL SALE",
			expected: FormatJudicial,
		},
		{
			name:     "nothing recognizable",
			firstRow: []string{"12345678", "SMITH JOHN"},
			pageText: "page one",
			expected: FormatUnknown,
		},
		{
			name:     "signature beyond text window ignored",
			pageText: string(make([]byte, pageTextWindow)) + "WINNING BID",
			expected: FormatUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectFormat(tc.firstRow, tc.pageText))
		})
	}
}

func TestFormatFromSaleType(t *testing.T) {
	assert.Equal(t, FormatRepository, FormatFromSaleType(SaleTypeRepository))
	assert.Equal(t, FormatJudicial, FormatFromSaleType(SaleTypeJudicial))
	assert.Equal(t, FormatUpset, FormatFromSaleType(SaleTypeUpset))
	assert.Equal(t, FormatUnknown, FormatFromSaleType(SaleTypeUnknown))
}

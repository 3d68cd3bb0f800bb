package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRow(t *testing.T) {
	tests := []struct {
		name     string
		row      []string
		expected RowClass
	}{
		{"township marker", []string{"LOGAN TOWNSHIP", ""}, RowMunicipality},
		{"borough marker", []string{"HOLLIDAYSBURG BOROUGH", ""}, RowMunicipality},
		{"city of marker", []string{"CITY OF ALTOONA", ""}, RowMunicipality},
		{"column header", []string{"CAMA#", "REPUTED OWNER"}, RowHeaderSkip},
		{"owner column header", []string{"OWNER NAME", "PARCEL"}, RowHeaderSkip},
		{"all caps section title", []string{"DELINQUENT PROPERTIES", ""}, RowHeaderSkip},
		{"llc owner is data", []string{"ACME HOLDINGS LLC", "123 MAIN ST"}, RowData},
		{"trust owner is data", []string{"SMITH FAMILY TRUST", "123 MAIN ST"}, RowData},
		{"numeric first cell is data", []string{"12345678", "SMITH JOHN", "123 MAIN ST"}, RowData},
		{"blank leading cell is data", []string{"", "123-456789", "SMITH JOHN"}, RowData},
		{"short all caps cell is data", []string{"SMITH", "123 MAIN ST"}, RowData},
		{"single cell row skipped", []string{"12345678"}, RowHeaderSkip},
		{"empty row skipped", nil, RowHeaderSkip},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyRow(tc.row))
		})
	}
}

func TestMunicipality(t *testing.T) {
	m, ok := Municipality([]string{"Logan Township", "x"})
	assert.True(t, ok)
	assert.Equal(t, "LOGAN TOWNSHIP", m)

	_, ok = Municipality([]string{"SMITH JOHN", "x"})
	assert.False(t, ok)

	_, ok = Municipality(nil)
	assert.False(t, ok)
}

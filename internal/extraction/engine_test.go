package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(nil)
}

func TestEngine_Parse_RepositoryDocument(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{
			Text: "BLAIR COUNTY REPOSITORY LIST",
			Tables: []Table{{
				Rows: [][]string{
					{"CAMA#", "REPUTED OWNER", "ADDRESS", "MAP NUMBER", "LAND USE"},
					{"LOGAN TOWNSHIP", "", ""},
					{"12345678", "SMITH JOHN", "123 MAIN ST", "01.05-16..-093.00-000", "Residential"},
					{"87654321", "DOE JANE", "456 OAK AVE", "02.07-11..-041.00-000", "Vacant Land"},
					{"HOLLIDAYSBURG BOROUGH", "", ""},
					{"11223344", "ROE RICHARD", "789 ELM ST", "03.01-02..-015.00-000", "Residential"},
				},
			}},
		},
	})

	engine := newTestEngine()
	res, err := engine.Parse(doc, ParseOptions{
		StateCode: "PA",
		SaleType:  SaleTypeRepository,
		SaleDate:  "2025-10-01",
		TaxYear:   2025,
	})

	require.NoError(t, err)
	assert.Equal(t, FormatRepository, res.Format)
	require.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.Extracted)

	first := res.Records[0]
	assert.Equal(t, "01.05-16..-093.00-000", first.ParcelID)
	assert.Equal(t, "SMITH JOHN", first.Owner)
	assert.Equal(t, "LOGAN TOWNSHIP", first.City)
	assert.Equal(t, SaleTypeRepository, first.SaleType)
	assert.Equal(t, "2025-10-01", first.SaleDate)
	assert.Equal(t, 2025, first.TaxYear)
	assert.Equal(t, 0.95, first.Confidence)
	assert.Equal(t, "12345678 | SMITH JOHN | 123 MAIN ST | 01.05-16..-093.00-000 | Residential", first.RawText)

	// Municipality context persists across rows until the next marker.
	assert.Equal(t, "LOGAN TOWNSHIP", res.Records[1].City)
	assert.Equal(t, "HOLLIDAYSBURG BOROUGH", res.Records[2].City)
}

func TestEngine_Parse_MunicipalityPersistsAcrossPages(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{
			Text: "UPSET SALE",
			Tables: []Table{{
				Rows: [][]string{
					{"LOGAN TOWNSHIP", "", ""},
					{"", "123-456789", "SMITH JOHN", "01.05-16..-093.00-000", "123 MAIN ST", "$2,000.00"},
				},
			}},
		},
		{
			Tables: []Table{{
				Rows: [][]string{
					{"", "123-456790", "DOE JANE", "02.07-11..-041.00-000", "456 OAK AVE", "$3,000.00"},
				},
			}},
		},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA", SaleType: SaleTypeUpset})

	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "LOGAN TOWNSHIP", res.Records[0].City)
	assert.Equal(t, "LOGAN TOWNSHIP", res.Records[1].City, "context carries into the next page")
}

func TestEngine_Parse_UpsetFirstRowIsData(t *testing.T) {
	// Upset listings do not start with a column header; the first row must
	// not be discarded.
	doc := NewDocumentSource([]Page{
		{
			Text: "2025 UPSET TAX SALE",
			Tables: []Table{{
				Rows: [][]string{
					{"", "123-456789", "SMITH JOHN", "01.05-16..-093.00-000", "123 MAIN ST", "$2,000.00"},
				},
			}},
		},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA"})

	require.NoError(t, err)
	assert.Equal(t, FormatUpset, res.Format)
	require.Len(t, res.Records, 1)
	assert.Equal(t, SaleTypeUpset, res.Records[0].SaleType)
}

func TestEngine_Parse_JudicialHeaderDiscarded(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{
			Tables: []Table{{
				Rows: [][]string{
					{"Sale", "Control #", "Owner", "Map #", "Description", "Land Use", "Winning Bid", "Winning Bidder"},
					{"*", "123-456789", "SMITH JOHN", "01.05-16..-093.00-000", "123 MAIN ST", "Residential", "Not Sold", ""},
				},
			}},
		},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA", SaleType: SaleTypeJudicial})

	require.NoError(t, err)
	assert.Equal(t, FormatJudicial, res.Format)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Nil(t, rec.TotalDue)
	assert.Equal(t, "SMITH JOHN", rec.Owner)
	assert.Empty(t, rec.City)
}

func TestEngine_Parse_UnknownFormatUsesSaleTypeHint(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{
			Text: "no recognizable signatures",
			Tables: []Table{{
				Rows: [][]string{
					{"", "123-456789", "SMITH JOHN", "01.05-16..-093.00-000", "123 MAIN ST", "$500.00"},
				},
			}},
		},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA", SaleType: SaleTypeUpset})

	require.NoError(t, err)
	assert.Equal(t, FormatUpset, res.Format)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 0.95, res.Records[0].Confidence)
}

func TestEngine_Parse_NoHintFallsBackToGenericParser(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{
			Text: "no recognizable signatures",
			Tables: []Table{{
				Rows: [][]string{
					{"SMITH, JOHN", "123 MAIN ST", "01.05-16..-093.00-000", "$950.00"},
				},
			}},
		},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA"})

	require.NoError(t, err)
	assert.Equal(t, FormatUnknown, res.Format)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 0.70, res.Records[0].Confidence, "generic parse ranks below format-specific")
	assert.Equal(t, SaleTypeUnknown, res.Records[0].SaleType)
}

func TestEngine_Parse_BareTextFallback(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{Text: "preamble page\nparcel 01.05-16..-093.00-000 owed\n"},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA", SaleType: SaleTypeRepository, TaxYear: 2025})

	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "01.05-16..-093.00-000", rec.ParcelID)
	assert.Empty(t, rec.Owner)
	assert.Empty(t, rec.Address)
	assert.GreaterOrEqual(t, rec.Confidence, 0.5)
	assert.LessOrEqual(t, rec.Confidence, 0.6)
	assert.Equal(t, SaleTypeRepository, rec.SaleType)
	assert.Equal(t, 2025, rec.TaxYear)
}

func TestEngine_Parse_SkipsUnparseableRows(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{
			Text: "BLAIR COUNTY REPOSITORY LIST CAMA REPUTED OWNER",
			Tables: []Table{{
				Rows: [][]string{
					{"CAMA#", "REPUTED OWNER", "ADDRESS", "MAP NUMBER", "LAND USE"},
					{"not-a-cama", "SMITH JOHN", "123 MAIN ST", "01.05-16..-093.00-000", "Residential"},
					{"12345678", "DOE JANE", "456 OAK AVE", "02.07-11..-041.00-000", "Residential"},
					{"too", "short"},
				},
			}},
		},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA"})

	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "02.07-11..-041.00-000", res.Records[0].ParcelID)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 0, res.Failed)
}

func TestEngine_Parse_EmptyDocumentIsNotAnError(t *testing.T) {
	res, err := newTestEngine().Parse(NewDocumentSource(nil), ParseOptions{StateCode: "PA"})

	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.AverageConfidence())
}

type failingSource struct{ err error }

func (s *failingSource) Next() (*Page, error) { return nil, s.err }

func TestEngine_Parse_SourceFailureIsFatal(t *testing.T) {
	srcErr := errors.New("corrupt byte stream")
	_, err := newTestEngine().Parse(&failingSource{err: srcErr}, ParseOptions{StateCode: "PA"})

	require.Error(t, err)
	assert.ErrorIs(t, err, srcErr)
}

func TestEngine_Parse_DefaultsTaxYear(t *testing.T) {
	doc := NewDocumentSource([]Page{
		{Text: "parcel 01.05-16..-093.00-000\n"},
	})

	res, err := newTestEngine().Parse(doc, ParseOptions{StateCode: "PA"})

	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.NotZero(t, res.Records[0].TaxYear)
}

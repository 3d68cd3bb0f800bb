// Package extraction implements the document extraction engine for county
// tax-sale PDF listings: format detection, row classification, OCR-artifact
// text repair, parcel ID normalization and the per-document orchestrator
// that ties them together.
package extraction

import (
	"io"
	"strings"
)

// SaleType identifies the tax-sale listing category a document belongs to.
type SaleType string

const (
	SaleTypeRepository SaleType = "repository"
	SaleTypeJudicial   SaleType = "judicial"
	SaleTypeUpset      SaleType = "upset"
	SaleTypeUnknown    SaleType = "unknown"
)

// Format identifies the tabular layout variant of a document. Formats map
// one-to-one onto sale types but are detected from the document itself
// rather than trusted from caller metadata.
type Format string

const (
	FormatRepository Format = "repository"
	FormatJudicial   Format = "judicial"
	FormatUpset      Format = "upset"
	FormatUnknown    Format = "unknown"
)

// SaleType converts a detected format to the matching sale type.
func (f Format) SaleType() SaleType {
	switch f {
	case FormatRepository:
		return SaleTypeRepository
	case FormatJudicial:
		return SaleTypeJudicial
	case FormatUpset:
		return SaleTypeUpset
	}
	return SaleTypeUnknown
}

// PropertyRecord is the sole output entity of the engine: one extracted
// property listing. Optional text fields are empty when absent; TotalDue is
// nil when the amount is unpublished (e.g. "Not Sold").
type PropertyRecord struct {
	ParcelID   string   `json:"parcel_id"`
	Address    string   `json:"address,omitempty"`
	Owner      string   `json:"owner,omitempty"`
	City       string   `json:"city,omitempty"`
	TotalDue   *float64 `json:"total_due,omitempty"`
	SaleType   SaleType `json:"sale_type"`
	SaleDate   string   `json:"sale_date,omitempty"`
	TaxYear    int      `json:"tax_year"`
	RawText    string   `json:"raw_text"`
	Confidence float64  `json:"confidence"`
}

// Table is one extracted table: an ordered list of rows, each an ordered
// list of cell strings. Absent cells are empty strings.
type Table struct {
	Rows [][]string
}

// Page is the unit of input the engine consumes from a PDF collaborator:
// zero or more tables plus the raw extractable page text.
type Page struct {
	Tables []Table
	Text   string
}

// PageSource yields a document's pages in order. Next returns io.EOF after
// the last page; any other error is a document-level fatal failure.
type PageSource interface {
	Next() (*Page, error)
}

// DocumentSource is a slice-backed PageSource for callers that already hold
// every page in memory.
type DocumentSource struct {
	pages []Page
	pos   int
}

// NewDocumentSource wraps a page slice in a PageSource.
func NewDocumentSource(pages []Page) *DocumentSource {
	return &DocumentSource{pages: pages}
}

// Next returns the next page or io.EOF.
func (s *DocumentSource) Next() (*Page, error) {
	if s.pos >= len(s.pages) {
		return nil, io.EOF
	}
	p := &s.pages[s.pos]
	s.pos++
	return p, nil
}

// Result is the outcome of parsing one document.
type Result struct {
	Records []PropertyRecord
	Format  Format

	// Extracted counts emitted records, Skipped counts rows rejected by a
	// structural check, Failed counts rows abandoned mid-parse.
	Extracted int
	Skipped   int
	Failed    int
}

// AverageConfidence returns the mean confidence across extracted records,
// or zero for an empty result.
func (r *Result) AverageConfidence() float64 {
	if len(r.Records) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range r.Records {
		sum += rec.Confidence
	}
	return sum / float64(len(r.Records))
}

// joinRaw builds the audit raw_text value from a row's non-empty cells.
func joinRaw(row []string) string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, " | ")
}

// Package extractor is the public library entry point for parsing county
// tax-sale PDFs into property records.
package extractor

import (
	"context"

	"github.com/taxdeedflow/extraction-engine/internal/extraction"
	"github.com/taxdeedflow/extraction-engine/internal/observability"
	"github.com/taxdeedflow/extraction-engine/internal/pdf"
)

// Re-export record and result types for the public API
type (
	PropertyRecord = extraction.PropertyRecord
	Result         = extraction.Result
	Page           = extraction.Page
	Table          = extraction.Table
	PageSource     = extraction.PageSource
	ParseOptions   = extraction.ParseOptions
	SaleType       = extraction.SaleType
	Format         = extraction.Format
)

// Sale type constants
const (
	SaleTypeRepository = extraction.SaleTypeRepository
	SaleTypeJudicial   = extraction.SaleTypeJudicial
	SaleTypeUpset      = extraction.SaleTypeUpset
	SaleTypeUnknown    = extraction.SaleTypeUnknown
)

// Format constants
const (
	FormatRepository = extraction.FormatRepository
	FormatJudicial   = extraction.FormatJudicial
	FormatUpset      = extraction.FormatUpset
	FormatUnknown    = extraction.FormatUnknown
)

// Client is the main entry point for the extraction library
type Client struct {
	engine *extraction.Engine
}

// Config holds configuration options for the client
type Config struct {
	// Verbose enables debug logging to stdout.
	Verbose bool
}

// NewClient creates a new extractor client
func NewClient(config *Config) *Client {
	logger := observability.NopLogger()
	if config != nil && config.Verbose {
		logger = observability.DefaultLogger()
	}
	return &Client{engine: extraction.NewEngine(logger)}
}

// ParseFile extracts property records from a PDF file on disk.
func (c *Client) ParseFile(ctx context.Context, path string, opts ParseOptions) (*Result, error) {
	source, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	return c.Parse(ctx, source, opts)
}

// Parse extracts property records from an arbitrary page source, for
// callers that already hold the document's pages.
func (c *Client) Parse(ctx context.Context, source PageSource, opts ParseOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.engine.Parse(source, opts)
}

// NewPageSource wraps in-memory pages in a PageSource.
func NewPageSource(pages []Page) PageSource {
	return extraction.NewDocumentSource(pages)
}

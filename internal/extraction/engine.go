package extraction

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/taxdeedflow/extraction-engine/internal/observability"
)

// ParseOptions carries the caller-supplied document metadata the engine
// cannot discover on its own.
type ParseOptions struct {
	// StateCode selects state-specific parcel ID patterns, e.g. "PA".
	StateCode string
	// SaleType is the caller's hint, used when format detection comes back
	// unknown and attached to every emitted record.
	SaleType SaleType
	// SaleDate is passed through to records unmodified.
	SaleDate string
	// TaxYear defaults to the current year when zero.
	TaxYear int
}

// Engine parses one document at a time. Engines hold no per-document state
// and are safe to share across concurrently parsed documents.
type Engine struct {
	logger *observability.Logger
}

// NewEngine creates an extraction engine. A nil logger disables logging.
func NewEngine(logger *observability.Logger) *Engine {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Engine{logger: logger}
}

// Parse drives page/table/row iteration for one document and assembles the
// extracted record list. Row-level failures are logged and skipped; only a
// page-source iteration failure aborts the document.
func (e *Engine) Parse(src PageSource, opts ParseOptions) (*Result, error) {
	if opts.TaxYear == 0 {
		opts.TaxYear = time.Now().Year()
	}
	if opts.SaleType == "" {
		opts.SaleType = SaleTypeUnknown
	}

	res := &Result{Format: FormatUnknown}

	// Per-document mutable state, owned by this call.
	format := FormatUnknown
	detected := false
	municipality := ""

	pageNum := 0
	for {
		page, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", pageNum+1, err)
		}
		pageNum++

		if len(page.Tables) == 0 {
			// No extractable tables on this page: scan free text lines.
			recs := scanTextLines(page.Text, opts.StateCode)
			for i := range recs {
				e.attachMetadata(&recs[i], format, opts)
			}
			if len(recs) > 0 {
				e.logger.Debug().
					Int("page", pageNum).
					Int("records", len(recs)).
					Msg("extracted records via bare-text fallback")
			}
			res.Records = append(res.Records, recs...)
			continue
		}

		for ti, table := range page.Tables {
			for ri, row := range table.Rows {
				if pageNum == 1 && ti == 0 && ri == 0 && !detected {
					format = DetectFormat(row, page.Text)
					if format == FormatUnknown {
						format = FormatFromSaleType(opts.SaleType)
					}
					detected = true
					res.Format = format
					e.logger.Debug().
						Str("format", string(format)).
						Msg("detected document format")

					// Repository and judicial listings start with a column
					// header; the upset first row is genuine data.
					if format == FormatRepository || format == FormatJudicial {
						continue
					}
				}

				if m, ok := Municipality(row); ok {
					municipality = m
					continue
				}

				if len(row) < 3 {
					res.Skipped++
					continue
				}

				if ClassifyRow(row) != RowData {
					res.Skipped++
					continue
				}

				rec := e.parseRow(format, row, opts.StateCode, municipality, res)
				if rec == nil {
					continue
				}

				e.attachMetadata(rec, format, opts)
				rec.RawText = joinRaw(row)
				res.Records = append(res.Records, *rec)
			}
		}
	}

	res.Extracted = len(res.Records)

	e.logger.Info().
		Str("format", string(res.Format)).
		Int("extracted", res.Extracted).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Float64("avg_confidence", res.AverageConfidence()).
		Msg("document parse complete")

	return res, nil
}

// parseRow dispatches a data row to the parser matching the frozen format.
// A panic during field extraction is logged with the offending row and
// counted as a failed row; it never aborts the document.
func (e *Engine) parseRow(format Format, row []string, stateCode, municipality string, res *Result) (rec *PropertyRecord) {
	defer func() {
		if r := recover(); r != nil {
			res.Failed++
			rec = nil
			e.logger.Warn().
				Interface("panic", r).
				Str("row", joinRaw(row)).
				Msg("row parse failed")
		}
	}()

	switch format {
	case FormatRepository:
		rec = parseRepositoryRow(row, stateCode, municipality)
	case FormatJudicial:
		rec = parseJudicialRow(row, stateCode)
	case FormatUpset:
		rec = parseUpsetRow(row, stateCode, municipality)
	default:
		rec = parseGenericRow(row, stateCode, municipality)
	}

	if rec == nil {
		res.Skipped++
	}
	return rec
}

// attachMetadata fills the caller-supplied document metadata on a record.
func (e *Engine) attachMetadata(rec *PropertyRecord, format Format, opts ParseOptions) {
	rec.SaleType = opts.SaleType
	if rec.SaleType == SaleTypeUnknown {
		rec.SaleType = format.SaleType()
	}
	rec.SaleDate = opts.SaleDate
	rec.TaxYear = opts.TaxYear
}

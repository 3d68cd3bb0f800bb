// Package pipeline orchestrates the document processing flow: download,
// dedupe, parse, persist.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxdeedflow/extraction-engine/internal/cache"
	"github.com/taxdeedflow/extraction-engine/internal/extraction"
	"github.com/taxdeedflow/extraction-engine/internal/fetch"
	"github.com/taxdeedflow/extraction-engine/internal/observability"
	"github.com/taxdeedflow/extraction-engine/internal/pdf"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

const parserName = "extraction-engine/v1"

// PageSource is a closeable page stream, as produced by pdf.Open.
type PageSource interface {
	extraction.PageSource
	Close() error
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Logger *observability.Logger
	Engine *extraction.Engine
	Repos  *storage.Repositories
	Fetch  *fetch.Fetcher
	Cache  cache.Client

	// OpenSource opens a page source for a PDF on disk. Defaults to
	// pdf.Open.
	OpenSource func(path string) (PageSource, error)

	// CacheTTL bounds how long document hashes stay cached.
	CacheTTL time.Duration
	// DownloadDir receives fetched PDFs; empty means the system temp dir.
	DownloadDir string
	// KeepFiles leaves downloaded PDFs on disk after parsing.
	KeepFiles bool
	// DefaultTaxYear is attached to records when the document has none.
	DefaultTaxYear int
	// BatchLimit caps documents processed per county run.
	BatchLimit int
}

// Pipeline processes county sale documents end to end.
type Pipeline struct {
	deps Deps
}

// New creates a pipeline. Logger and Cache may be nil.
func New(deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}
	if deps.Engine == nil {
		deps.Engine = extraction.NewEngine(deps.Logger)
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 24 * time.Hour
	}
	if deps.OpenSource == nil {
		deps.OpenSource = func(path string) (PageSource, error) {
			return pdf.Open(path)
		}
	}
	return &Pipeline{deps: deps}
}

// Summary aggregates one county processing run.
type Summary struct {
	CountyID   uuid.UUID
	Documents  int
	Parsed     int
	Unchanged  int
	Failed     int
	Properties int
}

// ProcessCounty parses every unparsed property list for a county. Per
// document failures are recorded on their jobs and do not stop the run.
func (p *Pipeline) ProcessCounty(ctx context.Context, countyName, stateCode string) (*Summary, error) {
	county, err := p.deps.Repos.Counties.GetOrCreate(ctx, countyName, stateCode)
	if err != nil {
		return nil, fmt.Errorf("resolve county %s %s: %w", countyName, stateCode, err)
	}

	logger := p.deps.Logger.WithCounty(county.Name, county.StateCode)

	docs, err := p.deps.Repos.Documents.ListUnparsed(ctx, county.ID, storage.DocumentTypePropertyList, p.deps.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("list unparsed documents: %w", err)
	}

	summary := &Summary{CountyID: county.ID, Documents: len(docs)}
	for _, doc := range docs {
		job, err := p.ProcessDocument(ctx, county, doc)
		if err != nil {
			summary.Failed++
			logger.Error().Err(err).Str("document", doc.Title).Msg("Document processing failed")
			continue
		}
		if job == nil {
			summary.Unchanged++
			continue
		}
		summary.Parsed++
		summary.Properties += job.PropertiesExtracted
	}

	logger.Info().
		Int("documents", summary.Documents).
		Int("parsed", summary.Parsed).
		Int("unchanged", summary.Unchanged).
		Int("failed", summary.Failed).
		Int("properties", summary.Properties).
		Msg("County processing complete")

	return summary, nil
}

// ProcessDocument downloads, parses and persists one document. It returns
// the completed job, or (nil, nil) when the document content is unchanged
// since the last parse. Failures are recorded on the job before returning.
func (p *Pipeline) ProcessDocument(ctx context.Context, county *storage.County, doc *storage.Document) (*storage.ParsingJob, error) {
	logger := p.deps.Logger.WithCounty(county.Name, county.StateCode).WithDocument(doc.ID.String())

	job, err := p.deps.Repos.Jobs.Create(ctx, doc.ID, parserName)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	dl, err := p.deps.Fetch.Fetch(ctx, doc.URL, p.deps.DownloadDir)
	if err != nil {
		return nil, p.fail(ctx, job.ID, fmt.Errorf("download: %w", err))
	}
	if !p.deps.KeepFiles {
		defer os.Remove(dl.Path)
	}

	if p.isUnchanged(ctx, doc, dl.SHA256) {
		logger.Info().Str("sha256", dl.SHA256).Msg("Document unchanged, skipping parse")
		if err := p.deps.Repos.Jobs.Complete(ctx, job.ID, 0, 0, 0); err != nil {
			return nil, fmt.Errorf("complete job: %w", err)
		}
		return nil, nil
	}

	source, err := p.deps.OpenSource(dl.Path)
	if err != nil {
		return nil, p.fail(ctx, job.ID, fmt.Errorf("open pdf: %w", err))
	}
	defer source.Close()

	result, err := p.deps.Engine.Parse(source, extraction.ParseOptions{
		StateCode: county.StateCode,
		SaleType:  saleTypeFromTitle(doc.Title),
		SaleDate:  deref(doc.SaleDate),
		TaxYear:   p.deps.DefaultTaxYear,
	})
	if err != nil {
		return nil, p.fail(ctx, job.ID, fmt.Errorf("parse: %w", err))
	}

	stored, storeFailed := p.storeRecords(ctx, logger, county.ID, doc.ID, result.Records)

	if err := p.deps.Repos.Jobs.Complete(ctx, job.ID, stored, result.Failed+storeFailed, result.AverageConfidence()); err != nil {
		return nil, fmt.Errorf("complete job: %w", err)
	}
	if err := p.deps.Repos.Documents.MarkParsed(ctx, doc.ID, dl.SHA256); err != nil {
		return nil, fmt.Errorf("mark parsed: %w", err)
	}
	p.rememberHash(ctx, doc.ID, county.ID, dl.SHA256)

	logger.Info().
		Str("format", string(result.Format)).
		Int("stored", stored).
		Int("failed", result.Failed+storeFailed).
		Float64("avg_confidence", result.AverageConfidence()).
		Msg("Document parsed")

	job.Status = storage.JobStatusSucceeded
	job.PropertiesExtracted = stored
	job.PropertiesFailed = result.Failed + storeFailed
	job.AvgConfidence = result.AverageConfidence()
	return job, nil
}

// ExtractFile parses a local PDF without touching storage. Used by the CLI
// for ad-hoc runs against files on disk.
func (p *Pipeline) ExtractFile(ctx context.Context, path string, opts extraction.ParseOptions) (*extraction.Result, error) {
	source, err := p.deps.OpenSource(path)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	return p.deps.Engine.Parse(source, opts)
}

// storeRecords upserts extracted records, continuing past individual
// failures.
func (p *Pipeline) storeRecords(ctx context.Context, logger *observability.Logger, countyID, documentID uuid.UUID, records []extraction.PropertyRecord) (stored, failed int) {
	for i := range records {
		prop := toProperty(countyID, documentID, &records[i])
		if err := p.deps.Repos.Properties.Upsert(ctx, prop); err != nil {
			failed++
			logger.Warn().Err(err).Str("parcel_id", prop.ParcelID).Msg("Property upsert failed")
			continue
		}
		stored++
	}
	return stored, failed
}

// isUnchanged reports whether the document body matches the hash recorded
// at its last successful parse.
func (p *Pipeline) isUnchanged(ctx context.Context, doc *storage.Document, sha string) bool {
	if p.deps.Cache != nil {
		if cached, err := p.deps.Cache.Get(ctx, cache.DocumentHashKey(doc.ID.String())); err == nil {
			if bytes.Equal(cached, []byte(sha)) {
				return true
			}
		}
	}
	return doc.SHA256 != nil && *doc.SHA256 == sha
}

func (p *Pipeline) rememberHash(ctx context.Context, documentID, countyID uuid.UUID, sha string) {
	if p.deps.Cache == nil {
		return
	}
	ctxKey := cache.DocumentHashKey(documentID.String())
	if err := p.deps.Cache.Set(ctx, ctxKey, []byte(sha), p.deps.CacheTTL); err != nil {
		p.deps.Logger.Warn().Err(err).Msg("Cache document hash failed")
	}
	// The county's property listing changed; drop any cached copy.
	if err := p.deps.Cache.Delete(ctx, cache.CountyPropertiesKey(countyID.String())); err != nil {
		p.deps.Logger.Warn().Err(err).Msg("Invalidate county cache failed")
	}
}

func (p *Pipeline) fail(ctx context.Context, jobID uuid.UUID, cause error) error {
	if err := p.deps.Repos.Jobs.Fail(ctx, jobID, cause.Error()); err != nil {
		return fmt.Errorf("record job failure (%v): %w", cause, err)
	}
	return cause
}

// saleTypeFromTitle guesses the sale type hint from a document title.
func saleTypeFromTitle(title string) extraction.SaleType {
	upper := strings.ToUpper(title)
	switch {
	case strings.Contains(upper, "REPOSITORY"):
		return extraction.SaleTypeRepository
	case strings.Contains(upper, "JUDICIAL"):
		return extraction.SaleTypeJudicial
	case strings.Contains(upper, "UPSET"):
		return extraction.SaleTypeUpset
	default:
		return extraction.SaleTypeUnknown
	}
}

// toProperty maps an extracted record onto the storage model. Empty
// extracted fields persist as NULL.
func toProperty(countyID, documentID uuid.UUID, rec *extraction.PropertyRecord) *storage.Property {
	return &storage.Property{
		CountyID:   countyID,
		DocumentID: documentID,
		ParcelID:   rec.ParcelID,
		Address:    optional(rec.Address),
		OwnerName:  optional(rec.Owner),
		City:       optional(rec.City),
		TotalDue:   rec.TotalDue,
		TaxYear:    rec.TaxYear,
		SaleType:   string(rec.SaleType),
		SaleDate:   optional(rec.SaleDate),
		RawText:    rec.RawText,
		Confidence: rec.Confidence,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

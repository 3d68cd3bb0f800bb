package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repositories bundles all repositories over one connection.
type Repositories struct {
	Counties   *CountyRepository
	Documents  *DocumentRepository
	Jobs       *JobRepository
	Properties *PropertyRepository
}

// NewRepositories creates the repository set.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Counties:   NewCountyRepository(db),
		Documents:  NewDocumentRepository(db),
		Jobs:       NewJobRepository(db),
		Properties: NewPropertyRepository(db),
	}
}

// CountyRepository handles county CRUD operations.
type CountyRepository struct {
	db DB
}

// NewCountyRepository creates a new county repository.
func NewCountyRepository(db DB) *CountyRepository {
	return &CountyRepository{db: db}
}

// GetOrCreate returns the county with the given name and state, creating it
// if it does not exist yet.
func (r *CountyRepository) GetOrCreate(ctx context.Context, name, stateCode string) (*County, error) {
	county := &County{}
	query := `
		SELECT id, name, state_code, created_at, updated_at
		FROM counties WHERE name = $1 AND state_code = $2
	`
	err := r.db.QueryRowContext(ctx, query, name, stateCode).Scan(
		&county.ID, &county.Name, &county.StateCode, &county.CreatedAt, &county.UpdatedAt,
	)
	if err == nil {
		return county, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	county = &County{
		ID:        uuid.New(),
		Name:      name,
		StateCode: stateCode,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	insert := `
		INSERT INTO counties (id, name, state_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, insert,
		county.ID, county.Name, county.StateCode, county.CreatedAt, county.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return county, nil
}

// GetByID retrieves a county by ID.
func (r *CountyRepository) GetByID(ctx context.Context, id uuid.UUID) (*County, error) {
	query := `
		SELECT id, name, state_code, created_at, updated_at
		FROM counties WHERE id = $1
	`
	county := &County{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&county.ID, &county.Name, &county.StateCode, &county.CreatedAt, &county.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return county, err
}

// DocumentRepository handles source document CRUD operations.
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create registers a new source document.
func (r *DocumentRepository) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.DocumentType == "" {
		doc.DocumentType = DocumentTypePropertyList
	}
	doc.CreatedAt = time.Now()

	query := `
		INSERT INTO documents (id, county_id, title, url, document_type, sale_date, sha256, parsed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.CountyID, doc.Title, doc.URL, doc.DocumentType,
		doc.SaleDate, doc.SHA256, doc.ParsedAt, doc.CreatedAt,
	)
	return err
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `
		SELECT id, county_id, title, url, document_type, sale_date, sha256, parsed_at, created_at
		FROM documents WHERE id = $1
	`
	doc := &Document{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.CountyID, &doc.Title, &doc.URL, &doc.DocumentType,
		&doc.SaleDate, &doc.SHA256, &doc.ParsedAt, &doc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// ListUnparsed lists documents for a county that have not been parsed yet.
func (r *DocumentRepository) ListUnparsed(ctx context.Context, countyID uuid.UUID, docType DocumentType, limit int) ([]*Document, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, county_id, title, url, document_type, sale_date, sha256, parsed_at, created_at
		FROM documents
		WHERE county_id = $1 AND document_type = $2 AND parsed_at IS NULL
		ORDER BY created_at
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, countyID, docType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		if err := rows.Scan(
			&doc.ID, &doc.CountyID, &doc.Title, &doc.URL, &doc.DocumentType,
			&doc.SaleDate, &doc.SHA256, &doc.ParsedAt, &doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkParsed records a document's content hash and parse time.
func (r *DocumentRepository) MarkParsed(ctx context.Context, id uuid.UUID, sha256 string) error {
	now := time.Now()
	query := `UPDATE documents SET parsed_at = $1, sha256 = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, now, sha256, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// JobRepository handles parsing job bookkeeping.
type JobRepository struct {
	db DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create starts a new running job for a document.
func (r *JobRepository) Create(ctx context.Context, documentID uuid.UUID, parserUsed string) (*ParsingJob, error) {
	job := &ParsingJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     JobStatusRunning,
		ParserUsed: parserUsed,
		StartedAt:  time.Now(),
	}
	query := `
		INSERT INTO parsing_jobs (id, document_id, status, parser_used, properties_extracted,
			properties_failed, avg_confidence, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.DocumentID, job.Status, job.ParserUsed,
		job.PropertiesExtracted, job.PropertiesFailed, job.AvgConfidence,
		job.ErrorMessage, job.StartedAt, job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Complete marks a job succeeded with its extraction stats.
func (r *JobRepository) Complete(ctx context.Context, id uuid.UUID, extracted, failed int, avgConfidence float64) error {
	now := time.Now()
	query := `
		UPDATE parsing_jobs SET
			status = $1, properties_extracted = $2, properties_failed = $3,
			avg_confidence = $4, completed_at = $5
		WHERE id = $6
	`
	return r.exec(ctx, query, JobStatusSucceeded, extracted, failed, avgConfidence, now, id)
}

// Fail marks a job failed with an error message.
func (r *JobRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now()
	query := `
		UPDATE parsing_jobs SET status = $1, error_message = $2, completed_at = $3
		WHERE id = $4
	`
	return r.exec(ctx, query, JobStatusFailed, message, now, id)
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*ParsingJob, error) {
	query := `
		SELECT id, document_id, status, parser_used, properties_extracted,
			properties_failed, avg_confidence, error_message, started_at, completed_at
		FROM parsing_jobs WHERE id = $1
	`
	job := &ParsingJob{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.DocumentID, &job.Status, &job.ParserUsed,
		&job.PropertiesExtracted, &job.PropertiesFailed, &job.AvgConfidence,
		&job.ErrorMessage, &job.StartedAt, &job.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func (r *JobRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// PropertyRepository handles extracted property persistence.
type PropertyRepository struct {
	db DB
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Upsert inserts a property or refreshes it when the same parcel was
// already extracted from the same document.
func (r *PropertyRepository) Upsert(ctx context.Context, p *Property) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO properties (id, county_id, document_id, parcel_id, address, owner_name,
			city, total_due, tax_year, sale_type, sale_date, raw_text, confidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (document_id, parcel_id) DO UPDATE SET
			address = excluded.address,
			owner_name = excluded.owner_name,
			city = excluded.city,
			total_due = excluded.total_due,
			tax_year = excluded.tax_year,
			sale_type = excluded.sale_type,
			sale_date = excluded.sale_date,
			raw_text = excluded.raw_text,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.CountyID, p.DocumentID, p.ParcelID, p.Address, p.OwnerName,
		p.City, p.TotalDue, p.TaxYear, p.SaleType, p.SaleDate, p.RawText,
		p.Confidence, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// ListByDocument lists properties extracted from one document.
func (r *PropertyRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*Property, error) {
	query := selectProperties + ` WHERE document_id = $1 ORDER BY parcel_id`
	return r.query(ctx, query, documentID)
}

// ListByCounty lists properties for a county, highest amount owed first.
func (r *PropertyRepository) ListByCounty(ctx context.Context, countyID uuid.UUID, limit int) ([]*Property, error) {
	if limit <= 0 {
		limit = 100
	}
	query := selectProperties + ` WHERE county_id = $1 ORDER BY total_due DESC NULLS LAST LIMIT $2`
	return r.query(ctx, query, countyID, limit)
}

const selectProperties = `
	SELECT id, county_id, document_id, parcel_id, address, owner_name, city,
		total_due, tax_year, sale_type, sale_date, raw_text, confidence, created_at, updated_at
	FROM properties`

func (r *PropertyRepository) query(ctx context.Context, query string, args ...interface{}) ([]*Property, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []*Property
	for rows.Next() {
		p := &Property{}
		if err := rows.Scan(
			&p.ID, &p.CountyID, &p.DocumentID, &p.ParcelID, &p.Address, &p.OwnerName,
			&p.City, &p.TotalDue, &p.TaxYear, &p.SaleType, &p.SaleDate, &p.RawText,
			&p.Confidence, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

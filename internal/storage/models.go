// Package storage provides database models and repositories for counties,
// source documents, parsing jobs and extracted properties.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a parsing job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSucceeded JobStatus = "succeeded"
)

// DocumentType categorizes a county source document.
type DocumentType string

const (
	DocumentTypePropertyList DocumentType = "property_list"
	DocumentTypeSaleNotice   DocumentType = "sale_notice"
)

// County is a taxing jurisdiction that publishes sale documents.
type County struct {
	ID        uuid.UUID
	Name      string
	StateCode string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document is one published PDF listing tracked for parsing.
type Document struct {
	ID           uuid.UUID
	CountyID     uuid.UUID
	Title        string
	URL          string
	DocumentType DocumentType
	SaleDate     *string
	SHA256       *string
	ParsedAt     *time.Time
	CreatedAt    time.Time
}

// ParsingJob records one attempt to parse a document.
type ParsingJob struct {
	ID                  uuid.UUID
	DocumentID          uuid.UUID
	Status              JobStatus
	ParserUsed          string
	PropertiesExtracted int
	PropertiesFailed    int
	AvgConfidence       float64
	ErrorMessage        *string
	StartedAt           time.Time
	CompletedAt         *time.Time
}

// Property is one extracted property listing, upserted per
// (document, parcel) pair.
type Property struct {
	ID         uuid.UUID
	CountyID   uuid.UUID
	DocumentID uuid.UUID
	ParcelID   string
	Address    *string
	OwnerName  *string
	City       *string
	TotalDue   *float64
	TaxYear    int
	SaleType   string
	SaleDate   *string
	RawText    string
	Confidence float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taxdeedflow/extraction-engine/internal/cache"
	"github.com/taxdeedflow/extraction-engine/internal/observability"
	"github.com/taxdeedflow/extraction-engine/internal/pipeline"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

// PropertyDTO represents one extracted property in API responses.
type PropertyDTO struct {
	ID         string   `json:"id"`
	CountyID   string   `json:"countyId"`
	DocumentID string   `json:"documentId"`
	ParcelID   string   `json:"parcelId"`
	Address    *string  `json:"address,omitempty"`
	OwnerName  *string  `json:"ownerName,omitempty"`
	City       *string  `json:"city,omitempty"`
	TotalDue   *float64 `json:"totalDue,omitempty"`
	TaxYear    int      `json:"taxYear"`
	SaleType   string   `json:"saleType"`
	SaleDate   *string  `json:"saleDate,omitempty"`
	Confidence float64  `json:"confidence"`
}

// PropertyListDTO wraps a property listing response.
type PropertyListDTO struct {
	Properties []PropertyDTO `json:"properties"`
	Count      int           `json:"count"`
}

// JobDTO represents a parsing job in API responses.
type JobDTO struct {
	ID                  string  `json:"id"`
	DocumentID          string  `json:"documentId"`
	Status              string  `json:"status"`
	ParserUsed          string  `json:"parserUsed"`
	PropertiesExtracted int     `json:"propertiesExtracted"`
	PropertiesFailed    int     `json:"propertiesFailed"`
	AvgConfidence       float64 `json:"avgConfidence"`
	ErrorMessage        *string `json:"errorMessage,omitempty"`
	StartedAt           string  `json:"startedAt"`
	CompletedAt         *string `json:"completedAt,omitempty"`
}

// PropertyHandler serves extracted property listings.
type PropertyHandler struct {
	logger   *observability.Logger
	repos    *storage.Repositories
	cache    cache.Client
	cacheTTL time.Duration
}

// NewPropertyHandler creates a property handler.
func NewPropertyHandler(logger *observability.Logger, repos *storage.Repositories, cacheClient cache.Client, cacheTTL time.Duration) *PropertyHandler {
	return &PropertyHandler{
		logger:   logger,
		repos:    repos,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

// ListByCounty handles GET /counties/{countyId}/properties.
func (h *PropertyHandler) ListByCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countyID, err := uuid.Parse(chi.URLParam(r, "countyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid county id", err.Error())
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	// Serve the default listing from cache when available.
	cacheKey := cache.CountyPropertiesKey(countyID.String())
	if h.cache != nil && limit == 0 {
		if data, err := h.cache.Get(ctx, cacheKey); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	props, err := h.repos.Properties.ListByCounty(ctx, countyID, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("List county properties failed")
		writeError(w, http.StatusInternalServerError, "list properties failed", "")
		return
	}

	dto := toPropertyList(props)
	data, err := json.Marshal(dto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode response failed", "")
		return
	}

	if h.cache != nil && limit == 0 {
		if err := h.cache.Set(ctx, cacheKey, data, h.cacheTTL); err != nil {
			h.logger.Warn().Err(err).Msg("Cache county properties failed")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListByDocument handles GET /documents/{documentId}/properties.
func (h *PropertyHandler) ListByDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documentID, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id", err.Error())
		return
	}

	props, err := h.repos.Properties.ListByDocument(ctx, documentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("List document properties failed")
		writeError(w, http.StatusInternalServerError, "list properties failed", "")
		return
	}

	writeJSON(w, toPropertyList(props))
}

// JobHandler serves parsing job status.
type JobHandler struct {
	logger *observability.Logger
	repos  *storage.Repositories
}

// NewJobHandler creates a job handler.
func NewJobHandler(logger *observability.Logger, repos *storage.Repositories) *JobHandler {
	return &JobHandler{logger: logger, repos: repos}
}

// Get handles GET /jobs/{jobId}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id", err.Error())
		return
	}

	job, err := h.repos.Jobs.GetByID(ctx, jobID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "job not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Get job failed")
		writeError(w, http.StatusInternalServerError, "get job failed", "")
		return
	}

	writeJSON(w, toJobDTO(job))
}

// ProcessRequestDTO is the request body for POST /counties/{countyId}/process.
type ProcessRequestDTO struct {
	// Name and StateCode register the county when it does not exist yet.
	Name      string `json:"name,omitempty"`
	StateCode string `json:"stateCode,omitempty"`
}

// ProcessResponseDTO reports one county processing run.
type ProcessResponseDTO struct {
	CountyID   string `json:"countyId"`
	Documents  int    `json:"documents"`
	Parsed     int    `json:"parsed"`
	Unchanged  int    `json:"unchanged"`
	Failed     int    `json:"failed"`
	Properties int    `json:"properties"`
}

// ProcessHandler triggers county document processing.
type ProcessHandler struct {
	logger   *observability.Logger
	repos    *storage.Repositories
	pipeline *pipeline.Pipeline
}

// NewProcessHandler creates a process handler.
func NewProcessHandler(logger *observability.Logger, repos *storage.Repositories, pipe *pipeline.Pipeline) *ProcessHandler {
	return &ProcessHandler{logger: logger, repos: repos, pipeline: pipe}
}

// ProcessCounty handles POST /counties/{countyId}/process.
func (h *ProcessHandler) ProcessCounty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	countyID, err := uuid.Parse(chi.URLParam(r, "countyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid county id", err.Error())
		return
	}

	county, err := h.repos.Counties.GetByID(ctx, countyID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "county not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Get county failed")
		writeError(w, http.StatusInternalServerError, "get county failed", "")
		return
	}

	summary, err := h.pipeline.ProcessCounty(ctx, county.Name, county.StateCode)
	if err != nil {
		h.logger.Error().Err(err).Msg("Process county failed")
		writeError(w, http.StatusInternalServerError, "process county failed", err.Error())
		return
	}

	writeJSON(w, ProcessResponseDTO{
		CountyID:   summary.CountyID.String(),
		Documents:  summary.Documents,
		Parsed:     summary.Parsed,
		Unchanged:  summary.Unchanged,
		Failed:     summary.Failed,
		Properties: summary.Properties,
	})
}

func toPropertyList(props []*storage.Property) PropertyListDTO {
	dto := PropertyListDTO{Properties: make([]PropertyDTO, 0, len(props))}
	for _, p := range props {
		dto.Properties = append(dto.Properties, PropertyDTO{
			ID:         p.ID.String(),
			CountyID:   p.CountyID.String(),
			DocumentID: p.DocumentID.String(),
			ParcelID:   p.ParcelID,
			Address:    p.Address,
			OwnerName:  p.OwnerName,
			City:       p.City,
			TotalDue:   p.TotalDue,
			TaxYear:    p.TaxYear,
			SaleType:   p.SaleType,
			SaleDate:   p.SaleDate,
			Confidence: p.Confidence,
		})
	}
	dto.Count = len(dto.Properties)
	return dto
}

func toJobDTO(job *storage.ParsingJob) JobDTO {
	dto := JobDTO{
		ID:                  job.ID.String(),
		DocumentID:          job.DocumentID.String(),
		Status:              string(job.Status),
		ParserUsed:          job.ParserUsed,
		PropertiesExtracted: job.PropertiesExtracted,
		PropertiesFailed:    job.PropertiesFailed,
		AvgConfidence:       job.AvgConfidence,
		ErrorMessage:        job.ErrorMessage,
		StartedAt:           job.StartedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		s := job.CompletedAt.Format(time.RFC3339)
		dto.CompletedAt = &s
	}
	return dto
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}

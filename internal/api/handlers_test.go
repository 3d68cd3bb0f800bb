package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdeedflow/extraction-engine/internal/cache"
	"github.com/taxdeedflow/extraction-engine/internal/pipeline"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

type apiFixture struct {
	handler http.Handler
	repos   *storage.Repositories
	county  *storage.County
	doc     *storage.Document
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(ctx, db))

	repos := storage.NewRepositories(db)
	county, err := repos.Counties.GetOrCreate(ctx, "Blair", "PA")
	require.NoError(t, err)

	doc := &storage.Document{CountyID: county.ID, Title: "Repository List", URL: "file:///tmp/list.pdf"}
	require.NoError(t, repos.Documents.Create(ctx, doc))

	owner := "SMITH JOHN"
	due := 1500.0
	require.NoError(t, repos.Properties.Upsert(ctx, &storage.Property{
		CountyID:   county.ID,
		DocumentID: doc.ID,
		ParcelID:   "01.05-16..-093.00-000",
		OwnerName:  &owner,
		TotalDue:   &due,
		TaxYear:    2025,
		SaleType:   "repository",
		RawText:    "raw",
		Confidence: 0.95,
	}))

	pipe := pipeline.New(pipeline.Deps{Repos: repos})
	handler := NewRouter(nil, repos, pipe, cache.NewMemoryClient(100), RouterConfig{})

	return &apiFixture{handler: handler, repos: repos, county: county, doc: doc}
}

func (f *apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.get(t, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAPI_ListCountyProperties(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.get(t, "/api/v1/counties/"+f.county.ID.String()+"/properties")

	require.Equal(t, http.StatusOK, rec.Code)

	var dto PropertyListDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Equal(t, 1, dto.Count)
	assert.Equal(t, "01.05-16..-093.00-000", dto.Properties[0].ParcelID)
	require.NotNil(t, dto.Properties[0].OwnerName)
	assert.Equal(t, "SMITH JOHN", *dto.Properties[0].OwnerName)
	require.NotNil(t, dto.Properties[0].TotalDue)
	assert.InDelta(t, 1500.0, *dto.Properties[0].TotalDue, 1e-9)

	// Second request is served from cache and matches.
	again := f.get(t, "/api/v1/counties/"+f.county.ID.String()+"/properties")
	assert.Equal(t, rec.Body.String(), again.Body.String())
}

func TestAPI_ListCountyProperties_BadID(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.get(t, "/api/v1/counties/not-a-uuid/properties")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid county id")
}

func TestAPI_ListDocumentProperties(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.get(t, "/api/v1/documents/"+f.doc.ID.String()+"/properties")

	require.Equal(t, http.StatusOK, rec.Code)

	var dto PropertyListDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 1, dto.Count)
}

func TestAPI_GetJob(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	job, err := f.repos.Jobs.Create(ctx, f.doc.ID, "extraction-engine/v1")
	require.NoError(t, err)
	require.NoError(t, f.repos.Jobs.Complete(ctx, job.ID, 10, 1, 0.9))

	rec := f.get(t, "/api/v1/jobs/"+job.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var dto JobDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "succeeded", dto.Status)
	assert.Equal(t, 10, dto.PropertiesExtracted)
	assert.NotNil(t, dto.CompletedAt)
}

func TestAPI_GetJob_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.get(t, "/api/v1/jobs/"+uuid.NewString())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ProcessCounty_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/counties/"+uuid.NewString()+"/process", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ProcessCounty_NoDocuments(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	county, err := f.repos.Counties.GetOrCreate(ctx, "Centre", "PA")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/counties/"+county.ID.String()+"/process", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var dto ProcessResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 0, dto.Documents)
}

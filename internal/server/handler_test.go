package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/async"
	"github.com/hana-yusof/lawcheck/internal/entity"
	"github.com/hana-yusof/lawcheck/internal/export"
	"github.com/hana-yusof/lawcheck/internal/ingest"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// ---- fakes ----

type fakeIngestor struct {
	result ingest.IngestionResult
	err    error
}

func (f *fakeIngestor) IngestPath(context.Context, string) (ingest.IngestionResult, error) {
	return f.result, f.err
}

func (f *fakeIngestor) IngestReader(_ context.Context, _ string, r io.Reader) (ingest.IngestionResult, error) {
	_, _ = io.Copy(io.Discard, r)
	return f.result, f.err
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Shutdown(context.Context) {}

func (f *fakeQueue) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

type fakeContracts struct {
	rows map[uuid.UUID]*entity.Contract
}

func (f *fakeContracts) UpsertByHash(context.Context, entity.Contract) (*entity.Contract, bool, error) {
	return nil, false, errors.New("not used")
}

func (f *fakeContracts) GetByID(_ context.Context, id uuid.UUID) (*entity.Contract, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeContracts) List(context.Context, int) ([]*entity.Contract, error) {
	var out []*entity.Contract
	for _, c := range f.rows {
		out = append(out, c)
	}
	return out, nil
}

type fakeJobs struct {
	latest *entity.CheckJob
}

func (f *fakeJobs) Start(context.Context, uuid.UUID) (*entity.CheckJob, error) {
	return nil, errors.New("not used")
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*entity.CheckJob, error) {
	if f.latest == nil || f.latest.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeJobs) LatestForContract(context.Context, uuid.UUID) (*entity.CheckJob, error) {
	if f.latest == nil {
		return nil, repository.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeJobs) SetExtracted(context.Context, uuid.UUID, string) error { return nil }
func (f *fakeJobs) SetSegmented(context.Context, uuid.UUID, int) error    { return nil }
func (f *fakeJobs) Finish(context.Context, uuid.UUID, constants.JobStatus, string) error {
	return nil
}

type fakeResults struct {
	rows []*entity.ClauseResult
}

func (f *fakeResults) Upsert(context.Context, *entity.ClauseResult) error { return nil }
func (f *fakeResults) ListForJob(context.Context, uuid.UUID) ([]*entity.ClauseResult, error) {
	return f.rows, nil
}

// ---- helpers ----

type env struct {
	handler    *Handler
	queue      *fakeQueue
	contractID uuid.UUID
	jobID      uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	contractID := uuid.New()
	jobID := uuid.New()

	contracts := &fakeContracts{rows: map[uuid.UUID]*entity.Contract{
		contractID: {ID: contractID, Filename: "contract.pdf", FileExt: "pdf", UploadedAt: time.Now().UTC()},
	}}
	jobs := &fakeJobs{latest: &entity.CheckJob{
		ID:          jobID,
		ContractID:  contractID,
		Status:      string(constants.JobStatusChecked),
		ClauseCount: 2,
		StartedAt:   time.Now().UTC(),
	}}
	results := &fakeResults{rows: []*entity.ClauseResult{
		{JobID: jobID, Position: 0, Label: "1.", Body: "Hours.", Status: string(constants.Compliant), Reasoning: "fine"},
		{JobID: jobID, Position: 1, Label: "2.", Body: "Overtime.", Status: string(constants.NonCompliant), Reasoning: "unpaid overtime", Citations: []string{"s.60A"}},
	}}

	queue := &fakeQueue{}
	ingestor := &fakeIngestor{result: ingest.IngestionResult{
		ContractID: contractID,
		HashHex:    "abc123",
		FileExt:    "pdf",
		UploadedAt: time.Now().UTC(),
	}}
	exporter := export.NewService(jobs, results, nil)

	h := NewHandler(ingestor, queue, contracts, jobs, results, exporter, nil, 0, nil)
	return &env{handler: h, queue: queue, contractID: contractID, jobID: jobID}
}

func multipartBody(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doRequest(e *env, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	NewRouter(e.handler).ServeHTTP(rr, req)
	return rr
}

// ---- tests ----

func TestUploadQueuesCheck(t *testing.T) {
	e := newEnv(t)
	body, ctype := multipartBody(t, "file", "contract.pdf", "%PDF-fake", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts", body)
	req.Header.Set("Content-Type", ctype)
	rr := doRequest(e, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, e.contractID.String(), resp.ContractID)
	assert.True(t, resp.Queued)
	assert.Equal(t, 1, e.queue.count())
}

func TestUploadDeduplicatedSkipsQueue(t *testing.T) {
	e := newEnv(t)
	e.handler.ingestor = &fakeIngestor{result: ingest.IngestionResult{
		ContractID:   e.contractID,
		Deduplicated: true,
	}}
	body, ctype := multipartBody(t, "file", "contract.pdf", "%PDF-fake", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts", body)
	req.Header.Set("Content-Type", ctype)
	rr := doRequest(e, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, 0, e.queue.count())
}

func TestUploadDeduplicatedForceRequeues(t *testing.T) {
	e := newEnv(t)
	e.handler.ingestor = &fakeIngestor{result: ingest.IngestionResult{
		ContractID:   e.contractID,
		Deduplicated: true,
	}}
	body, ctype := multipartBody(t, "file", "contract.pdf", "%PDF-fake", map[string]string{"force": "1"})

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts", body)
	req.Header.Set("Content-Type", ctype)
	rr := doRequest(e, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, 1, e.queue.count())
}

func TestUploadMissingFileField(t *testing.T) {
	e := newEnv(t)
	body, ctype := multipartBody(t, "attachment", "contract.pdf", "%PDF-fake", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/contracts", body)
	req.Header.Set("Content-Type", ctype)
	rr := doRequest(e, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetContract(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/contracts/"+e.contractID.String(), nil)
	rr := doRequest(e, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp contractResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Contract)
	assert.Equal(t, e.contractID, resp.Contract.ID)
	require.NotNil(t, resp.Job)
	assert.Equal(t, string(constants.JobStatusChecked), resp.Job.Status)
}

func TestGetContractNotFound(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/contracts/"+uuid.NewString(), nil)
	rr := doRequest(e, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetContractBadID(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/contracts/not-a-uuid", nil)
	rr := doRequest(e, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportJSON(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/contracts/"+e.contractID.String()+"/report", nil)
	rr := doRequest(e, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, e.jobID.String(), resp.JobID)
	assert.Equal(t, string(constants.JobStatusChecked), resp.Status)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "1.", resp.Results[0].Label)
	assert.Equal(t, "2.", resp.Results[1].Label)
	assert.Equal(t, []string{"s.60A"}, resp.Results[1].Citations)
	assert.Equal(t, 1, resp.Summary[string(constants.NonCompliant)])
}

func TestReportXLSX(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/contracts/"+e.contractID.String()+"/report.xlsx", nil)
	rr := doRequest(e, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rr.Body.Bytes())
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := doRequest(e, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthzDown(t *testing.T) {
	e := newEnv(t)
	e.handler.health = func(context.Context) error { return errors.New("db unreachable") }
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := doRequest(e, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hana-yusof/lawcheck/internal/async"
	"github.com/hana-yusof/lawcheck/internal/common"
	"github.com/hana-yusof/lawcheck/internal/entity"
	"github.com/hana-yusof/lawcheck/internal/export"
	"github.com/hana-yusof/lawcheck/internal/ingest"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// Handler wires the compliance API to its services.
type Handler struct {
	ingestor  ingest.Ingestor
	queue     async.Queue
	contracts repository.ContractRepository
	jobs      repository.CheckJobRepository
	results   repository.ClauseResultRepository
	exporter  *export.Service
	health    func(ctx context.Context) error

	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(
	ing ingest.Ingestor,
	queue async.Queue,
	contracts repository.ContractRepository,
	jobs repository.CheckJobRepository,
	results repository.ClauseResultRepository,
	exporter *export.Service,
	health func(ctx context.Context) error,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Handler{
		ingestor:       ing,
		queue:          queue,
		contracts:      contracts,
		jobs:           jobs,
		results:        results,
		exporter:       exporter,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts the API on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/contracts", h.handleUpload)
	r.Get("/v1/contracts", h.handleList)
	r.Get("/v1/contracts/{id}", h.handleGet)
	r.Get("/v1/contracts/{id}/report", h.handleReport)
	r.Get("/v1/contracts/{id}/report.xlsx", h.handleReportXLSX)
	r.Get("/healthz", h.handleHealthz)
}

type uploadResponse struct {
	ContractID   string `json:"contract_id"`
	Deduplicated bool   `json:"deduplicated"`
	ContentHash  string `json:"content_hash"`
	FileExt      string `json:"file_ext"`
	UploadedAt   string `json:"uploaded_at"`
	Queued       bool   `json:"queued"`
}

// handleUpload accepts a multipart contract upload and queues a compliance
// check. Re-uploading identical bytes returns the existing contract and only
// re-queues when force=1.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, common.NewAppError("INVALID_INPUT", "could not parse multipart form", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.NewAppError("INVALID_INPUT", "missing file field", err))
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.ingestor.IngestReader(ctx, header.Filename, file)
	if err != nil {
		writeError(w, common.NewAppError("INVALID_INPUT", "ingest failed", err))
		return
	}

	force := r.FormValue("force") == "1" || r.FormValue("force") == "true"
	queued := false
	if !res.Deduplicated || force {
		if err := h.queue.Enqueue(ctx, async.Job{
			ContractID:  res.ContractID,
			Force:       force,
			SubmittedAt: time.Now().UTC(),
		}); err != nil {
			writeError(w, err)
			return
		}
		queued = true
	}

	h.logger.Info("api.upload.ok",
		"contract_id", res.ContractID,
		"filename", header.Filename,
		"deduplicated", res.Deduplicated,
		"queued", queued,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusAccepted, uploadResponse{
		ContractID:   res.ContractID.String(),
		Deduplicated: res.Deduplicated,
		ContentHash:  res.HashHex,
		FileExt:      res.FileExt,
		UploadedAt:   res.UploadedAt.UTC().Format(time.RFC3339),
		Queued:       queued,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.contracts.List(r.Context(), 100)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": rows})
}

type contractResponse struct {
	Contract *entity.Contract `json:"contract"`
	Job      *entity.CheckJob `json:"job,omitempty"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	row, err := h.contracts.GetByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := contractResponse{Contract: row}
	if job, jerr := h.jobs.LatestForContract(ctx, id); jerr == nil {
		// contract text can be large; the status view does not need it
		job.ContractText = nil
		resp.Job = job
	}
	writeJSON(w, http.StatusOK, resp)
}

type clauseReportRow struct {
	Position  int      `json:"position"`
	Label     string   `json:"label"`
	Body      string   `json:"body"`
	Status    string   `json:"status"`
	Reasoning string   `json:"reasoning"`
	Citations []string `json:"citations,omitempty"`
}

type reportResponse struct {
	ContractID  string            `json:"contract_id"`
	JobID       string            `json:"job_id"`
	Status      string            `json:"status"`
	ClauseCount int               `json:"clause_count"`
	Error       string            `json:"error,omitempty"`
	Summary     map[string]int    `json:"summary"`
	Results     []clauseReportRow `json:"results"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	job, err := h.latestJob(ctx, r)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := h.results.ListForJob(ctx, job.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := reportResponse{
		ContractID:  job.ContractID.String(),
		JobID:       job.ID.String(),
		Status:      job.Status,
		ClauseCount: job.ClauseCount,
		Summary:     map[string]int{},
		Results:     make([]clauseReportRow, 0, len(rows)),
	}
	if job.ErrorMessage != nil {
		resp.Error = *job.ErrorMessage
	}
	for _, row := range rows {
		resp.Summary[row.Status]++
		resp.Results = append(resp.Results, clauseReportRow{
			Position:  row.Position,
			Label:     row.Label,
			Body:      row.Body,
			Status:    row.Status,
			Reasoning: row.Reasoning,
			Citations: row.Citations,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	job, err := h.latestJob(ctx, r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.exporter.ExportReportXLSX(ctx, job.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("compliance-%s.xlsx", job.ContractID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// latestJob resolves {id} to the contract's most recent check job.
func (h *Handler) latestJob(ctx context.Context, r *http.Request) (*entity.CheckJob, error) {
	id, err := parseID(r)
	if err != nil {
		return nil, err
	}
	if _, err := h.contracts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return h.jobs.LatestForContract(ctx, id)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewAppError("INVALID_INPUT", "id must be a UUID", common.ErrInvalidInput)
	}
	return id, nil
}

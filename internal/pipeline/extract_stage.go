package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/entity"
	"github.com/hana-yusof/lawcheck/internal/extract"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// ExtractStage turns a stored contract file into normalized text and records
// it on the check job.
type ExtractStage struct {
	Contracts repository.ContractRepository
	Jobs      repository.CheckJobRepository
	Extractor extract.TextExtractor
	Log       *slog.Logger
}

func NewExtractStage(contracts repository.ContractRepository, jobs repository.CheckJobRepository, tx extract.TextExtractor, log *slog.Logger) *ExtractStage {
	if log == nil {
		log = slog.Default()
	}
	return &ExtractStage{Contracts: contracts, Jobs: jobs, Extractor: tx, Log: log}
}

// Run starts a check job for contractID, extracts the contract text, and
// persists it. On extraction failure the job is finished as FAILED.
func (s *ExtractStage) Run(ctx context.Context, contractID uuid.UUID) (*entity.CheckJob, string, error) {
	row, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, "", fmt.Errorf("get contract: %w", err)
	}

	job, err := s.Jobs.Start(ctx, row.ID)
	if err != nil {
		return nil, "", fmt.Errorf("start job: %w", err)
	}

	res, err := s.Extractor.Extract(ctx, row.SourcePath)
	if err != nil {
		_ = s.Jobs.Finish(ctx, job.ID, constants.JobStatusFailed, err.Error())
		return job, "", fmt.Errorf("extract text: %w", err)
	}

	if err := s.Jobs.SetExtracted(ctx, job.ID, res.Text); err != nil {
		return job, "", fmt.Errorf("persist text: %w", err)
	}

	s.Log.Info("pipeline.extract.ok",
		"job_id", job.ID,
		"contract_id", row.ID,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return job, res.Text, nil
}

package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// Processor coordinates extract -> segment -> evaluate for one contract.
type Processor struct {
	Logger   *slog.Logger
	Extract  *ExtractStage
	Segment  *SegmentStage
	Evaluate *EvaluateStage
	Jobs     repository.CheckJobRepository
}

func NewProcessor(logger *slog.Logger, extract *ExtractStage, segment *SegmentStage, evaluate *EvaluateStage, jobs repository.CheckJobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extract: extract, Segment: segment, Evaluate: evaluate, Jobs: jobs}
}

// ProcessContract runs the full compliance check for contractID. Returns the
// job ID of the run; on stage failure the job is already marked FAILED and
// the stage error is returned.
func (p *Processor) ProcessContract(ctx context.Context, contractID uuid.UUID) (uuid.UUID, error) {
	job, text, err := p.Extract.Run(ctx, contractID)
	if err != nil {
		p.Logger.Error("processor.extract.failed", "contract_id", contractID, "err", err)
		if job == nil {
			return uuid.Nil, err
		}
		return job.ID, err
	}

	clauses, err := p.Segment.Run(ctx, job.ID, text)
	if err != nil {
		p.Logger.Error("processor.segment.failed", "job_id", job.ID, "err", err)
		return job.ID, err
	}

	sum, err := p.Evaluate.Run(ctx, job.ID, clauses)
	if err != nil {
		p.Logger.Error("processor.evaluate.failed", "job_id", job.ID, "err", err)
		_ = p.Jobs.Finish(ctx, job.ID, constants.JobStatusFailed, err.Error())
		return job.ID, err
	}

	if err := p.Jobs.Finish(ctx, job.ID, constants.JobStatusChecked, ""); err != nil {
		return job.ID, err
	}
	p.Logger.Info("processor.checked",
		"job_id", job.ID,
		"contract_id", contractID,
		"clauses", sum.Total,
		"non_compliant", sum.NonCompliant,
	)
	return job.ID, nil
}

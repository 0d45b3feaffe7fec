package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/clause"
	"github.com/hana-yusof/lawcheck/internal/common"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// SegmentStage splits the extracted contract text into labeled clauses and
// records the clause count on the job.
type SegmentStage struct {
	Jobs repository.CheckJobRepository
	Log  *slog.Logger
}

func NewSegmentStage(jobs repository.CheckJobRepository, log *slog.Logger) *SegmentStage {
	if log == nil {
		log = slog.Default()
	}
	return &SegmentStage{Jobs: jobs, Log: log}
}

// Run segments text for jobID. A contract that yields no clauses is a
// terminal failure: there is nothing for the evaluator to work on.
func (s *SegmentStage) Run(ctx context.Context, jobID uuid.UUID, text string) ([]clause.Clause, error) {
	clauses := clause.Segment(text)
	if len(clauses) == 0 {
		_ = s.Jobs.Finish(ctx, jobID, constants.JobStatusFailed, common.ErrUnsegmentable.Error())
		return nil, fmt.Errorf("job %s: %w", jobID, common.ErrUnsegmentable)
	}

	if err := s.Jobs.SetSegmented(ctx, jobID, len(clauses)); err != nil {
		return nil, fmt.Errorf("persist clause count: %w", err)
	}

	s.Log.Info("pipeline.segment.ok", "job_id", jobID, "clauses", len(clauses))
	return clauses, nil
}

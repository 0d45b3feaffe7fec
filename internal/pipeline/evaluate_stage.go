package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/clause"
	"github.com/hana-yusof/lawcheck/internal/entity"
	"github.com/hana-yusof/lawcheck/internal/kb"
	"github.com/hana-yusof/lawcheck/internal/llm"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

// EvaluateConfig holds knobs for the judgment stage.
type EvaluateConfig struct {
	KnowledgeBase string // display name cited in the prompt
	TopK          int    // law sections retrieved per clause, default 4
	Concurrency   int    // parallel clause evaluations, default 1 (sequential)
}

// ProgressFunc is called after each clause finishes, in completion order.
type ProgressFunc func(done, total int, label string)

// EvaluateStage judges each clause against the knowledge base. A failed
// evaluation is recorded as an EVALUATION_FAILED result for that clause;
// it never aborts the rest of the batch.
type EvaluateStage struct {
	Cfg       EvaluateConfig
	Results   repository.ClauseResultRepository
	Evaluator llm.ClauseEvaluator
	Retriever kb.Retriever
	Progress  ProgressFunc
	Log       *slog.Logger
}

func NewEvaluateStage(cfg EvaluateConfig, results repository.ClauseResultRepository, ev llm.ClauseEvaluator, ret kb.Retriever, log *slog.Logger) *EvaluateStage {
	if log == nil {
		log = slog.Default()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &EvaluateStage{Cfg: cfg, Results: results, Evaluator: ev, Retriever: ret, Log: log}
}

// Summary counts verdicts across one job.
type Summary struct {
	Total              int
	Compliant          int
	PartiallyCompliant int
	NonCompliant       int
	Failed             int
}

// Run evaluates every clause and persists the results in document order.
// Only infrastructure errors (persistence, canceled context) are returned.
func (s *EvaluateStage) Run(ctx context.Context, jobID uuid.UUID, clauses []clause.Clause) (Summary, error) {
	results := make([]*entity.ClauseResult, len(clauses))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Cfg.Concurrency)

	for idx, cl := range clauses {
		g.Go(func() error {
			results[idx] = s.evaluateOne(gctx, jobID, idx, cl)
			mu.Lock()
			done++
			if s.Progress != nil {
				s.Progress(done, len(clauses), cl.Label)
			}
			mu.Unlock()
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var sum Summary
	sum.Total = len(results)
	for _, res := range results {
		if perr := s.Results.Upsert(ctx, res); perr != nil {
			return sum, perr
		}
		switch constants.ComplianceStatus(res.Status) {
		case constants.Compliant:
			sum.Compliant++
		case constants.PartiallyCompliant:
			sum.PartiallyCompliant++
		case constants.NonCompliant:
			sum.NonCompliant++
		default:
			sum.Failed++
		}
	}

	s.Log.Info("pipeline.evaluate.ok",
		"job_id", jobID,
		"total", sum.Total,
		"compliant", sum.Compliant,
		"partially_compliant", sum.PartiallyCompliant,
		"non_compliant", sum.NonCompliant,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (s *EvaluateStage) evaluateOne(ctx context.Context, jobID uuid.UUID, position int, cl clause.Clause) *entity.ClauseResult {
	res := &entity.ClauseResult{
		JobID:       jobID,
		Position:    position,
		Label:       cl.Label,
		Body:        cl.Body,
		EvaluatedAt: time.Now().UTC(),
	}

	sections, err := s.Retriever.Search(ctx, cl.Body, s.Cfg.TopK)
	if err != nil {
		// degrade to an uncontextualized judgment rather than failing the clause
		s.Log.Warn("pipeline.evaluate.retrieval_failed", "job_id", jobID, "label", cl.Label, "err", err)
		sections = nil
	}

	judgment, raw, err := s.Evaluator.EvaluateClause(ctx, llm.EvaluateRequest{
		ClauseLabel:   cl.Label,
		ClauseBody:    cl.Body,
		Context:       sections,
		KnowledgeBase: s.Cfg.KnowledgeBase,
	})
	if err != nil {
		s.Log.Error("pipeline.evaluate.clause_failed", "job_id", jobID, "label", cl.Label, "err", err)
		res.Status = string(constants.EvaluationFailed)
		res.Reasoning = "evaluation failed: " + err.Error()
		res.RawJudgment = raw
		return res
	}

	res.Status = string(judgment.Status)
	res.Reasoning = judgment.Reasoning
	res.Citations = judgment.Citations
	res.RawJudgment = raw
	return res
}

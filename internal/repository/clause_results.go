package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hana-yusof/lawcheck/internal/entity"
)

// ClauseResultRepository persists per-clause verdicts.
type ClauseResultRepository interface {
	// Upsert writes a result keyed by (job, position); retries overwrite.
	Upsert(ctx context.Context, res *entity.ClauseResult) error
	ListForJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ClauseResult, error)
}

type clauseResultRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewClauseResultRepository(pool *pgxpool.Pool, logger *slog.Logger) ClauseResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &clauseResultRepository{pool: pool, logger: logger}
}

func (r *clauseResultRepository) Upsert(ctx context.Context, res *entity.ClauseResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.EvaluatedAt.IsZero() {
		res.EvaluatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clause_result (id, job_id, position, label, body, status, reasoning, citations, raw_judgment, evaluated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (job_id, position) DO UPDATE SET
			status = EXCLUDED.status,
			reasoning = EXCLUDED.reasoning,
			citations = EXCLUDED.citations,
			raw_judgment = EXCLUDED.raw_judgment,
			evaluated_at = EXCLUDED.evaluated_at`,
		res.ID, res.JobID, res.Position, res.Label, res.Body, res.Status,
		res.Reasoning, res.Citations, res.RawJudgment, res.EvaluatedAt)
	if err != nil {
		r.logger.Error("upsert clause result failed",
			"job_id", res.JobID, "position", res.Position, "error", err)
	}
	return err
}

func (r *clauseResultRepository) ListForJob(ctx context.Context, jobID uuid.UUID) ([]*entity.ClauseResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, job_id, position, label, body, status, reasoning, citations, raw_judgment, evaluated_at
		 FROM clause_result WHERE job_id = $1 ORDER BY position`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ClauseResult
	for rows.Next() {
		var cr entity.ClauseResult
		if err := rows.Scan(&cr.ID, &cr.JobID, &cr.Position, &cr.Label, &cr.Body,
			&cr.Status, &cr.Reasoning, &cr.Citations, &cr.RawJudgment, &cr.EvaluatedAt); err != nil {
			return nil, err
		}
		out = append(out, &cr)
	}
	return out, rows.Err()
}

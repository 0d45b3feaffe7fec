package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hana-yusof/lawcheck/constants"
	"github.com/hana-yusof/lawcheck/internal/entity"
)

// CheckJobRepository persists compliance runs.
type CheckJobRepository interface {
	Start(ctx context.Context, contractID uuid.UUID) (*entity.CheckJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CheckJob, error)
	// LatestForContract returns the most recently started job for a contract.
	LatestForContract(ctx context.Context, contractID uuid.UUID) (*entity.CheckJob, error)
	SetExtracted(ctx context.Context, id uuid.UUID, contractText string) error
	SetSegmented(ctx context.Context, id uuid.UUID, clauseCount int) error
	Finish(ctx context.Context, id uuid.UUID, status constants.JobStatus, errorMessage string) error
}

type checkJobRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCheckJobRepository(pool *pgxpool.Pool, logger *slog.Logger) CheckJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &checkJobRepository{pool: pool, logger: logger}
}

func (r *checkJobRepository) Start(ctx context.Context, contractID uuid.UUID) (*entity.CheckJob, error) {
	id := uuid.New()
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO check_job (id, contract_id, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, contractID, string(constants.JobStatusRunning), now)
	if err != nil {
		r.logger.Error("start check job failed", "contract_id", contractID, "error", err)
		return nil, err
	}
	return &entity.CheckJob{
		ID:         id,
		ContractID: contractID,
		Status:     string(constants.JobStatusRunning),
		StartedAt:  now,
	}, nil
}

func (r *checkJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CheckJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, contract_id, status, contract_text, clause_count, error_message, started_at, finished_at
		 FROM check_job WHERE id = $1`, id)
	return scanJob(row)
}

func (r *checkJobRepository) LatestForContract(ctx context.Context, contractID uuid.UUID) (*entity.CheckJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, contract_id, status, contract_text, clause_count, error_message, started_at, finished_at
		 FROM check_job WHERE contract_id = $1 ORDER BY started_at DESC LIMIT 1`, contractID)
	return scanJob(row)
}

func (r *checkJobRepository) SetExtracted(ctx context.Context, id uuid.UUID, contractText string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE check_job SET status = $2, contract_text = $3 WHERE id = $1`,
		id, string(constants.JobStatusExtractOK), contractText)
	return err
}

func (r *checkJobRepository) SetSegmented(ctx context.Context, id uuid.UUID, clauseCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE check_job SET status = $2, clause_count = $3 WHERE id = $1`,
		id, string(constants.JobStatusSegmented), clauseCount)
	return err
}

func (r *checkJobRepository) Finish(ctx context.Context, id uuid.UUID, status constants.JobStatus, errorMessage string) error {
	var msg *string
	if errorMessage != "" {
		msg = &errorMessage
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE check_job SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`,
		id, string(status), msg, time.Now().UTC())
	return err
}

func scanJob(row rowScanner) (*entity.CheckJob, error) {
	var j entity.CheckJob
	err := row.Scan(&j.ID, &j.ContractID, &j.Status, &j.ContractText, &j.ClauseCount,
		&j.ErrorMessage, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

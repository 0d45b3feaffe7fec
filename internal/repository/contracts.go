package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hana-yusof/lawcheck/internal/entity"
)

// ContractRepository persists uploaded contract files.
type ContractRepository interface {
	// UpsertByHash inserts the contract or returns the existing row when the
	// same content hash is already known. The bool reports deduplication.
	UpsertByHash(ctx context.Context, c entity.Contract) (*entity.Contract, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	List(ctx context.Context, limit int) ([]*entity.Contract, error)
}

type contractRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewContractRepository(pool *pgxpool.Pool, logger *slog.Logger) ContractRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &contractRepository{pool: pool, logger: logger}
}

func (r *contractRepository) UpsertByHash(ctx context.Context, c entity.Contract) (*entity.Contract, bool, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.UploadedAt.IsZero() {
		c.UploadedAt = time.Now().UTC()
	}

	// the no-op DO UPDATE makes RETURNING yield the surviving row either way
	row := r.pool.QueryRow(ctx,
		`INSERT INTO contract (id, filename, source_path, content_hash, file_ext, file_size, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (content_hash) DO UPDATE SET content_hash = EXCLUDED.content_hash
		 RETURNING id, filename, source_path, content_hash, file_ext, file_size, uploaded_at`,
		c.ID, c.Filename, c.SourcePath, c.ContentHash, c.FileExt, c.FileSize, c.UploadedAt)

	got, err := scanContract(row)
	if err != nil {
		r.logger.Error("upsert contract failed", "filename", c.Filename, "error", err)
		return nil, false, err
	}
	dedup := got.ID != c.ID
	if dedup {
		r.logger.Info("contract deduplicated", "contract_id", got.ID, "filename", c.Filename)
	}
	return got, dedup, nil
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, filename, source_path, content_hash, file_ext, file_size, uploaded_at
		 FROM contract WHERE id = $1`, id)
	c, err := scanContract(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) List(ctx context.Context, limit int) ([]*entity.Contract, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, filename, source_path, content_hash, file_ext, file_size, uploaded_at
		 FROM contract ORDER BY uploaded_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*entity.Contract, error) {
	var c entity.Contract
	if err := row.Scan(&c.ID, &c.Filename, &c.SourcePath, &c.ContentHash, &c.FileExt, &c.FileSize, &c.UploadedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

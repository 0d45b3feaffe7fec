package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables this service needs if they do not exist.
// Idempotent; run at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contract (
			id           UUID PRIMARY KEY,
			filename     TEXT NOT NULL,
			source_path  TEXT NOT NULL,
			content_hash BYTEA NOT NULL UNIQUE,
			file_ext     TEXT NOT NULL,
			file_size    BIGINT NOT NULL DEFAULT 0,
			uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS check_job (
			id            UUID PRIMARY KEY,
			contract_id   UUID NOT NULL REFERENCES contract(id) ON DELETE CASCADE,
			status        TEXT NOT NULL,
			contract_text TEXT,
			clause_count  INT NOT NULL DEFAULT 0,
			error_message TEXT,
			started_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			finished_at   TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS clause_result (
			id           UUID PRIMARY KEY,
			job_id       UUID NOT NULL REFERENCES check_job(id) ON DELETE CASCADE,
			position     INT NOT NULL,
			label        TEXT NOT NULL,
			body         TEXT NOT NULL,
			status       TEXT NOT NULL,
			reasoning    TEXT NOT NULL DEFAULT '',
			citations    TEXT[],
			raw_judgment JSONB,
			evaluated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (job_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS check_job_contract_idx ON check_job (contract_id, started_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

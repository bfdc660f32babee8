package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS ingestion_jobs (
		job_id         TEXT PRIMARY KEY,
		file_name      TEXT NOT NULL,
		file_path      TEXT NOT NULL,
		document_type  TEXT,
		state          TEXT NOT NULL DEFAULT 'queued',
		stage          TEXT,
		chunk_count    INT NOT NULL DEFAULT 0,
		accepted_units INT NOT NULL DEFAULT 0,
		rejected_units INT NOT NULL DEFAULT 0,
		skipped_units  INT NOT NULL DEFAULT 0,
		warnings       JSONB NOT NULL DEFAULT '[]'::jsonb,
		fail_reason    TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chunks (
		chunk_id   TEXT PRIMARY KEY,
		job_id     TEXT NOT NULL REFERENCES ingestion_jobs(job_id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		embed_text TEXT NOT NULL,
		metadata   JSONB NOT NULL DEFAULT '{}'::jsonb,
		embedding  vector(1536),
		content_tsv tsvector GENERATED ALWAYS AS (to_tsvector('english', embed_text)) STORED,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS chunks_job_idx ON chunks (job_id)`,
	`CREATE INDEX IF NOT EXISTS chunks_tsv_idx ON chunks USING GIN (content_tsv)`,
	`CREATE TABLE IF NOT EXISTS ask_sessions (
		session_id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ask_exchanges (
		id         BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES ask_sessions(session_id) ON DELETE CASCADE,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		refused    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the service needs if they are absent.
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

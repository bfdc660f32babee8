package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"lexflow/internal/models"
)

type ChunkRecord struct {
	ChunkID         string
	JobID           string
	Content         string
	EmbedText       string
	Metadata        models.ChunkMetadata
	EmbeddingVector *string
}

type ChunkRepo struct {
	db *DB
}

func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// UpsertChunks writes a batch keyed by chunk_id, so re-ingesting the
// same document overwrites rather than duplicates. A nil embedding
// keeps whatever vector is already stored.
func (r *ChunkRepo) UpsertChunks(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert chunks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata %s: %w", c.ChunkID, err)
		}
		_, err = tx.Exec(ctx, `
INSERT INTO chunks (chunk_id, job_id, content, embed_text, metadata, embedding)
VALUES ($1, $2, $3, $4, $5::jsonb, CASE WHEN $6::text IS NULL THEN NULL ELSE $6::vector END)
ON CONFLICT (chunk_id)
DO UPDATE SET
  job_id = EXCLUDED.job_id,
  content = EXCLUDED.content,
  embed_text = EXCLUDED.embed_text,
  metadata = EXCLUDED.metadata,
  embedding = COALESCE(EXCLUDED.embedding, chunks.embedding)`,
			c.ChunkID, c.JobID, c.Content, c.EmbedText, string(meta), c.EmbeddingVector,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ChunkID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

func (r *ChunkRepo) DeleteChunksByJob(ctx context.Context, jobID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM chunks WHERE job_id=$1`, jobID)
	if err != nil {
		return fmt.Errorf("delete chunks for job %s: %w", jobID, err)
	}
	return nil
}

func (r *ChunkRepo) ListChunksByJob(ctx context.Context, jobID string) ([]models.Chunk, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT chunk_id, job_id, content, embed_text, metadata
FROM chunks
WHERE job_id=$1
ORDER BY chunk_id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list chunks by job: %w", err)
	}
	defer rows.Close()
	out := make([]models.Chunk, 0, 64)
	for rows.Next() {
		var c models.Chunk
		var meta []byte
		if err := rows.Scan(&c.ChunkID, &c.JobID, &c.Content, &c.EmbedText, &meta); err != nil {
			return nil, fmt.Errorf("scan chunk by job: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &c.Metadata); err != nil {
				return nil, fmt.Errorf("decode chunk metadata %s: %w", c.ChunkID, err)
			}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks by job: %w", err)
	}
	return out, nil
}

package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lexflow/internal/models"

	"github.com/jackc/pgx/v5"
)

type SearchFilters struct {
	DocumentType models.DocumentType
	JobIDs       []string
}

type Searcher struct {
	q Queryer
}

type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func NewSearcher(q Queryer) *Searcher {
	return &Searcher{q: q}
}

// SearchChunks runs the vector arm: cosine similarity against stored
// embeddings, best first.
func (s *Searcher) SearchChunks(ctx context.Context, queryVec []float32, topK int, filters SearchFilters) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 20
	}
	vecLiteral := ToLiteral(queryVec)
	args := []any{vecLiteral, topK}

	filterSQL := ""
	if filters.DocumentType != "" {
		args = append(args, string(filters.DocumentType))
		filterSQL += fmt.Sprintf(" AND c.metadata->>'document_type' = $%d", len(args))
	}
	if len(filters.JobIDs) > 0 {
		args = append(args, filters.JobIDs)
		filterSQL += fmt.Sprintf(" AND c.job_id = ANY($%d)", len(args))
	}

	query := `
SELECT c.chunk_id,
       c.content,
       c.metadata,
       1 - (c.embedding <=> $1::vector) AS score
FROM chunks c
WHERE c.embedding IS NOT NULL` + filterSQL + `
ORDER BY c.embedding <=> $1::vector
LIMIT $2`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	results := make([]models.SearchResult, 0, topK)
	for rows.Next() {
		var r models.SearchResult
		var meta []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &meta, &r.VectorScore); err != nil {
			return nil, fmt.Errorf("scan vector result: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("decode result metadata %s: %w", r.ChunkID, err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector rows: %w", err)
	}
	return results, nil
}

func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

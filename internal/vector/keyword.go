package vector

import (
	"context"
	"encoding/json"
	"fmt"

	"lexflow/internal/models"
)

// KeywordSearcher runs the lexical arm over the stored tsvector column.
type KeywordSearcher struct {
	q Queryer
}

func NewKeywordSearcher(q Queryer) *KeywordSearcher {
	return &KeywordSearcher{q: q}
}

// buildKeywordQuery assembles the lexical-arm SQL. Rows without a
// stored embedding are preview-stage chunks awaiting confirm; they
// must stay invisible to search until indexing persists their vector.
func buildKeywordQuery(queryText string, topK int, filters SearchFilters) (string, []any) {
	args := []any{queryText, topK}

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
       ts_rank(c.content_tsv, plainto_tsquery('english', $1)) AS score
FROM chunks c
WHERE c.embedding IS NOT NULL
  AND c.content_tsv @@ plainto_tsquery('english', $1)` + filterSQL + `
ORDER BY score DESC
LIMIT $2`
	return query, args
}

func (s *KeywordSearcher) SearchChunks(ctx context.Context, queryText string, topK int, filters SearchFilters) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 20
	}
	query, args := buildKeywordQuery(queryText, topK, filters)

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keyword search: %w", err)
	}
	defer rows.Close()

	results := make([]models.SearchResult, 0, topK)
	for rows.Next() {
		var r models.SearchResult
		var meta []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &meta, &r.KeywordScore); err != nil {
			return nil, fmt.Errorf("scan keyword result: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("decode result metadata %s: %w", r.ChunkID, err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword rows: %w", err)
	}
	return results, nil
}

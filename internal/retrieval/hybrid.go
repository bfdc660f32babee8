package retrieval

import (
	"context"
	"fmt"
	"log"
	"sort"

	"lexflow/internal/models"
	"lexflow/internal/vector"
)

// QueryEmbedder embeds the query text for the vector arm.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type VectorArm interface {
	SearchChunks(ctx context.Context, queryVec []float32, topK int, filters vector.SearchFilters) ([]models.SearchResult, error)
}

type KeywordArm interface {
	SearchChunks(ctx context.Context, queryText string, topK int, filters vector.SearchFilters) ([]models.SearchResult, error)
}

type Hybrid struct {
	Embedder QueryEmbedder
	Vector   VectorArm
	Keyword  KeywordArm

	VectorWeight  float64
	KeywordWeight float64
	K             int
	TopN          int
}

// HybridResult carries fused hits plus a degradation marker when one
// arm was unavailable.
type HybridResult struct {
	Results  []models.SearchResult
	Degraded string
}

func NewHybrid(e QueryEmbedder, v VectorArm, k KeywordArm) *Hybrid {
	return &Hybrid{
		Embedder:      e,
		Vector:        v,
		Keyword:       k,
		VectorWeight:  0.6,
		KeywordWeight: 0.4,
		K:             20,
		TopN:          20,
	}
}

// Search runs both arms, min-max normalizes each arm's scores
// independently, and fuses them as a weighted sum. A chunk that only
// one arm returned contributes zero for the missing component.
// Duplicate chunk ids keep their higher fused score. When exactly one
// arm fails the other's results are returned flagged degraded; when
// both fail the search errors.
func (h *Hybrid) Search(ctx context.Context, query string, filters vector.SearchFilters) (HybridResult, error) {
	vecResults, vecErr := h.vectorSearch(ctx, query, filters)
	kwResults, kwErr := h.Keyword.SearchChunks(ctx, query, h.K, filters)

	if vecErr != nil && kwErr != nil {
		return HybridResult{}, fmt.Errorf("both retrieval arms failed: vector: %v; keyword: %w", vecErr, kwErr)
	}

	degraded := ""
	if vecErr != nil {
		log.Printf("vector arm unavailable, serving keyword-only: %v", vecErr)
		degraded = "vector_unavailable"
		vecResults = nil
	}
	if kwErr != nil {
		log.Printf("keyword arm unavailable, serving vector-only: %v", kwErr)
		degraded = "keyword_unavailable"
		kwResults = nil
	}

	fused := Fuse(vecResults, kwResults, h.VectorWeight, h.KeywordWeight)
	if len(fused) > h.TopN && h.TopN > 0 {
		fused = fused[:h.TopN]
	}
	return HybridResult{Results: fused, Degraded: degraded}, nil
}

func (h *Hybrid) vectorSearch(ctx context.Context, query string, filters vector.SearchFilters) ([]models.SearchResult, error) {
	vec, err := h.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return h.Vector.SearchChunks(ctx, vec, h.K, filters)
}

// Fuse merges the two arms. Exported so the gating tests can drive it
// with fixed score lists.
func Fuse(vecResults, kwResults []models.SearchResult, vectorWeight, keywordWeight float64) []models.SearchResult {
	vecNorm := normalizeScores(vecResults, func(r models.SearchResult) float64 { return r.VectorScore })
	kwNorm := normalizeScores(kwResults, func(r models.SearchResult) float64 { return r.KeywordScore })

	merged := map[string]models.SearchResult{}
	for i, r := range vecResults {
		r.VectorScore = vecNorm[i]
		r.KeywordScore = 0
		r.FusedScore = vectorWeight * r.VectorScore
		merged[r.ChunkID] = r
	}
	for i, r := range kwResults {
		kw := kwNorm[i]
		if prev, ok := merged[r.ChunkID]; ok {
			prev.KeywordScore = kw
			prev.FusedScore = vectorWeight*prev.VectorScore + keywordWeight*kw
			merged[r.ChunkID] = prev
			continue
		}
		r.VectorScore = 0
		r.KeywordScore = kw
		r.FusedScore = keywordWeight * kw
		merged[r.ChunkID] = r
	}

	out := make([]models.SearchResult, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FusedScore != out[j].FusedScore {
			return out[i].FusedScore > out[j].FusedScore
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	return out
}

// normalizeScores min-max scales one arm's scores. A constant or
// single-element list normalizes to 1.0.
func normalizeScores(results []models.SearchResult, score func(models.SearchResult) float64) []float64 {
	if len(results) == 0 {
		return nil
	}
	min, max := score(results[0]), score(results[0])
	for _, r := range results[1:] {
		s := score(r)
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(results))
	for i, r := range results {
		if max == min {
			out[i] = 1.0
			continue
		}
		out[i] = (score(r) - min) / (max - min)
	}
	return out
}

package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"lexflow/internal/models"
	"lexflow/internal/vector"
)

func sr(id string, vec, kw float64) models.SearchResult {
	return models.SearchResult{ChunkID: id, VectorScore: vec, KeywordScore: kw}
}

func TestFuseWeightedSum(t *testing.T) {
	vecResults := []models.SearchResult{sr("a", 0.9, 0), sr("b", 0.5, 0)}
	kwResults := []models.SearchResult{sr("a", 0, 3.0), sr("c", 0, 1.0)}

	fused := Fuse(vecResults, kwResults, 0.6, 0.4)
	if len(fused) != 3 {
		t.Fatalf("got %d results", len(fused))
	}
	// a: vector normalizes to 1.0 (max), keyword to 1.0 (max).
	if fused[0].ChunkID != "a" {
		t.Fatalf("top = %s", fused[0].ChunkID)
	}
	if math.Abs(fused[0].FusedScore-1.0) > 1e-9 {
		t.Fatalf("fused a = %f", fused[0].FusedScore)
	}
}

func TestFuseMissingArmContributesZero(t *testing.T) {
	vecResults := []models.SearchResult{sr("a", 0.9, 0), sr("b", 0.1, 0)}
	fused := Fuse(vecResults, nil, 0.6, 0.4)
	// a normalizes to 1.0, so fused = 0.6*1.0 + 0.4*0.
	if math.Abs(fused[0].FusedScore-0.6) > 1e-9 {
		t.Fatalf("fused = %f, want 0.6", fused[0].FusedScore)
	}
}

func TestFuseSingleElementNormalizesToOne(t *testing.T) {
	fused := Fuse([]models.SearchResult{sr("only", 0.12, 0)}, nil, 0.6, 0.4)
	if math.Abs(fused[0].VectorScore-1.0) > 1e-9 {
		t.Fatalf("normalized = %f", fused[0].VectorScore)
	}
}

func TestFuseDeduplicatesByChunkID(t *testing.T) {
	vecResults := []models.SearchResult{sr("dup", 0.8, 0), sr("x", 0.2, 0)}
	kwResults := []models.SearchResult{sr("dup", 0, 2.0), sr("y", 0, 1.0)}
	fused := Fuse(vecResults, kwResults, 0.6, 0.4)
	seen := map[string]int{}
	for _, r := range fused {
		seen[r.ChunkID]++
	}
	if seen["dup"] != 1 {
		t.Fatalf("dup appears %d times", seen["dup"])
	}
	// The merged entry carries both components.
	if fused[0].ChunkID != "dup" || fused[0].KeywordScore == 0 || fused[0].VectorScore == 0 {
		t.Fatalf("merged entry = %+v", fused[0])
	}
}

type fixedEmbedder struct{ err error }

func (f fixedEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fixedArm struct {
	results []models.SearchResult
	err     error
}

func (f fixedArm) SearchChunks(_ context.Context, _ []float32, _ int, _ vector.SearchFilters) ([]models.SearchResult, error) {
	return f.results, f.err
}

type fixedKeywordArm struct {
	results []models.SearchResult
	err     error
}

func (f fixedKeywordArm) SearchChunks(_ context.Context, _ string, _ int, _ vector.SearchFilters) ([]models.SearchResult, error) {
	return f.results, f.err
}

func TestHybridSearchDegradedOnVectorOutage(t *testing.T) {
	h := NewHybrid(
		fixedEmbedder{err: errors.New("embed service down")},
		fixedArm{},
		fixedKeywordArm{results: []models.SearchResult{sr("k1", 0, 2.0)}},
	)
	res, err := h.Search(context.Background(), "query", vector.SearchFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Degraded != "vector_unavailable" {
		t.Fatalf("degraded = %q", res.Degraded)
	}
	if len(res.Results) != 1 || res.Results[0].ChunkID != "k1" {
		t.Fatalf("results = %+v", res.Results)
	}
}

func TestHybridSearchDegradedOnKeywordOutage(t *testing.T) {
	h := NewHybrid(
		fixedEmbedder{},
		fixedArm{results: []models.SearchResult{sr("v1", 0.9, 0)}},
		fixedKeywordArm{err: errors.New("fts index gone")},
	)
	res, err := h.Search(context.Background(), "query", vector.SearchFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Degraded != "keyword_unavailable" {
		t.Fatalf("degraded = %q", res.Degraded)
	}
}

func TestHybridSearchBothArmsDownErrors(t *testing.T) {
	h := NewHybrid(
		fixedEmbedder{err: errors.New("down")},
		fixedArm{},
		fixedKeywordArm{err: errors.New("down")},
	)
	if _, err := h.Search(context.Background(), "query", vector.SearchFilters{}); err == nil {
		t.Fatal("expected error with both arms down")
	}
}

func TestHybridSearchTruncatesToTopN(t *testing.T) {
	var many []models.SearchResult
	for i := 0; i < 30; i++ {
		many = append(many, sr(string(rune('a'+i)), float64(i)/30, 0))
	}
	h := NewHybrid(fixedEmbedder{}, fixedArm{results: many}, fixedKeywordArm{})
	h.TopN = 20
	res, err := h.Search(context.Background(), "query", vector.SearchFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 20 {
		t.Fatalf("got %d results, want 20", len(res.Results))
	}
}

func TestFuseVectorWeightMonotonicity(t *testing.T) {
	// vecHeavy leads on the vector arm, kwHeavy on the keyword arm.
	vecResults := []models.SearchResult{sr("vecHeavy", 0.9, 0), sr("kwHeavy", 0.3, 0)}
	kwResults := []models.SearchResult{sr("kwHeavy", 0, 3.0), sr("vecHeavy", 0, 0.5)}

	rankOf := func(fused []models.SearchResult, id string) int {
		for i, r := range fused {
			if r.ChunkID == id {
				return i
			}
		}
		t.Fatalf("%s missing from fused results", id)
		return -1
	}

	low := Fuse(vecResults, kwResults, 0.2, 0.8)
	high := Fuse(vecResults, kwResults, 0.8, 0.2)

	if rankOf(low, "kwHeavy") != 0 {
		t.Fatalf("keyword-heavy weights should rank kwHeavy first, got %s", low[0].ChunkID)
	}
	if rankOf(high, "vecHeavy") != 0 {
		t.Fatalf("vector-heavy weights should rank vecHeavy first, got %s", high[0].ChunkID)
	}
	if rankOf(high, "vecHeavy") > rankOf(low, "vecHeavy") {
		t.Fatal("raising the vector weight must never worsen the rank of the higher-vector-score candidate")
	}
}

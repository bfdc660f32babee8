package retrieval

import (
	"context"
	"log"
	"sort"

	"lexflow/internal/models"
	"lexflow/internal/providers"
)

const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"

	singleSourceDisclaimer = "This answer draws on a single source document and could not be cross-checked."
)

// Gate applies the two-stage relevance check around the reranker.
type Gate struct {
	Reranker        providers.RerankProvider
	RelevanceFloor  float64
	ConfidenceFloor float64
	RerankTopK      int
}

func NewGate(reranker providers.RerankProvider) *Gate {
	return &Gate{
		Reranker:        reranker,
		RelevanceFloor:  0.70,
		ConfidenceFloor: 0.80,
		RerankTopK:      5,
	}
}

// GateResult is what the ask pipeline builds its answer from. Refusal
// set means no answer may be generated; Selected lists the only chunks
// allowed into the prompt (and therefore the only citable ones).
type GateResult struct {
	Refusal    *models.Refusal
	Selected   []models.SearchResult
	Confidence string
	Degraded   string
	Disclaimer string
}

// Evaluate applies the gates to fused results. The first gate fires on
// the best fused score before any reranker call, so an irrelevant query
// never spends a rerank request. Reranker outages degrade to fused
// ordering with lowered confidence instead of refusing.
func (g *Gate) Evaluate(ctx context.Context, query string, fused []models.SearchResult) GateResult {
	if len(fused) == 0 || fused[0].FusedScore < g.RelevanceFloor {
		return GateResult{Refusal: &models.Refusal{Reason: "no sufficiently relevant passage found"}}
	}

	top := fused
	if len(top) > g.RerankTopK {
		top = top[:g.RerankTopK]
	}

	if g.Reranker == nil {
		return g.degraded(top, "reranker_unconfigured")
	}

	docs := make([]string, len(top))
	for i, r := range top {
		docs[i] = r.Content
	}
	ranked, _, err := g.Reranker.Rerank(ctx, providers.RerankRequest{Query: query, Documents: docs, TopN: len(docs)})
	if err != nil {
		log.Printf("reranker unavailable, serving fused order: %v", err)
		return g.degraded(top, "reranker_unavailable")
	}

	scored := make([]models.SearchResult, 0, len(ranked))
	for _, rr := range ranked {
		if rr.Index < 0 || rr.Index >= len(top) {
			continue
		}
		r := top[rr.Index]
		r.RerankScore = rr.Score
		scored = append(scored, r)
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].RerankScore > scored[j].RerankScore })

	if len(scored) == 0 || scored[0].RerankScore < g.ConfidenceFloor {
		return GateResult{Refusal: &models.Refusal{Reason: "retrieved passages did not pass the confidence check"}}
	}

	res := GateResult{Selected: scored, Confidence: ConfidenceHigh}
	g.applyDiversity(&res)
	return res
}

func (g *Gate) degraded(top []models.SearchResult, reason string) GateResult {
	res := GateResult{Selected: top, Confidence: ConfidenceLow, Degraded: reason}
	g.applyDiversity(&res)
	return res
}

// applyDiversity lowers confidence when every selected chunk comes from
// one source document. Single-source answers still go out, with a
// disclaimer; diversity never refuses.
func (g *Gate) applyDiversity(res *GateResult) {
	docs := map[string]struct{}{}
	for _, r := range res.Selected {
		docs[r.Metadata.DocumentID] = struct{}{}
	}
	if len(docs) < 2 {
		res.Confidence = ConfidenceLow
		res.Disclaimer = singleSourceDisclaimer
	}
}

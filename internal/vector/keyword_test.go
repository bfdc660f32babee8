package vector

import (
	"strings"
	"testing"

	"lexflow/internal/models"
)

func TestKeywordQueryExcludesUnembeddedChunks(t *testing.T) {
	query, args := buildKeywordQuery("cheating", 20, SearchFilters{})
	if !strings.Contains(query, "c.embedding IS NOT NULL") {
		t.Fatalf("keyword query must exclude chunks without a stored embedding:\n%s", query)
	}
	if len(args) != 2 || args[0] != "cheating" || args[1] != 20 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestKeywordQueryFilterPlaceholders(t *testing.T) {
	query, args := buildKeywordQuery("fraud", 10, SearchFilters{
		DocumentType: models.DocTypeJudgment,
		JobIDs:       []string{"j1", "j2"},
	})
	if !strings.Contains(query, "c.metadata->>'document_type' = $3") {
		t.Fatalf("document type filter misplaced:\n%s", query)
	}
	if !strings.Contains(query, "c.job_id = ANY($4)") {
		t.Fatalf("job id filter misplaced:\n%s", query)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args got %d", len(args))
	}
	if !strings.Contains(query, "c.embedding IS NOT NULL") {
		t.Fatalf("filtered query lost the embedding predicate:\n%s", query)
	}
}

package providers

import (
	"context"
	"encoding/json"
	"math"
	"testing"
)

func TestMockEmbedDeterministic(t *testing.T) {
	m := NewMockProvider(64)
	a, _, err := m.Embed(context.Background(), EmbedRequest{Inputs: []string{"section 420 cheating"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := m.Embed(context.Background(), EmbedRequest{Inputs: []string{"section 420 cheating"}})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("embedding not deterministic")
		}
	}
	var norm float64
	for _, x := range a[0] {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1.0) > 1e-3 {
		t.Fatalf("vector norm^2 = %f, want 1", norm)
	}
}

func TestMockMetadataOutputIsValidJSON(t *testing.T) {
	m := NewMockProvider(0)
	resp, _, err := m.Generate(context.Background(), GenerateRequest{Operation: "metadata"})
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(resp.Text), &payload); err != nil {
		t.Fatalf("mock metadata is not JSON: %v", err)
	}
	if payload["case_title"] == "" {
		t.Fatal("case_title missing")
	}
}

func TestMockAtomizeQuoteComesFromParagraph(t *testing.T) {
	m := NewMockProvider(0)
	prompt := "instructions here\n\nParagraph:\nThe appeal is dismissed with costs awarded to the respondent."
	resp, _, err := m.Generate(context.Background(), GenerateRequest{Operation: "atomize", Prompt: prompt})
	if err != nil {
		t.Fatal(err)
	}
	var units []struct {
		SupportingQuote string `json:"supporting_quote"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &units); err != nil {
		t.Fatalf("mock atomize output is not JSON: %v", err)
	}
	if len(units) != 1 || units[0].SupportingQuote != "The appeal is dismissed with costs awarded to" {
		t.Fatalf("quote = %+v", units)
	}
}

func TestMockRerankDeterministic(t *testing.T) {
	m := NewMockProvider(0)
	req := RerankRequest{Query: "q", Documents: []string{"one", "two"}}
	a, _, _ := m.Rerank(context.Background(), req)
	b, _, _ := m.Rerank(context.Background(), req)
	for i := range a {
		if a[i].Score != b[i].Score || a[i].Index != i {
			t.Fatal("rerank not deterministic")
		}
	}
}

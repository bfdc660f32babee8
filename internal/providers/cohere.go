package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// CohereReranker scores query/document pairs via Cohere's rerank API.
type CohereReranker struct {
	keyName string
	apiKey  string
	model   string
	client  *http.Client
}

func NewCohereReranker(keyName string) *CohereReranker {
	model := os.Getenv("LEXFLOW_COHERE_RERANK_MODEL")
	if strings.TrimSpace(model) == "" {
		model = "rerank-english-v3.0"
	}
	return &CohereReranker{
		keyName: keyName,
		apiKey:  resolveCohereKey(keyName),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *CohereReranker) Rerank(ctx context.Context, req RerankRequest) ([]RerankResult, ProviderInfo, error) {
	info := ProviderInfo{Name: "cohere", Key: c.keyName, Model: c.model}
	if c.apiKey == "" {
		return nil, info, fmt.Errorf("cohere key missing for alias %q", c.keyName)
	}
	topN := req.TopN
	if topN <= 0 || topN > len(req.Documents) {
		topN = len(req.Documents)
	}
	payload, _ := json.Marshal(map[string]any{
		"model":     c.model,
		"query":     req.Query,
		"documents": req.Documents,
		"top_n":     topN,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.cohere.ai/v1/rerank", bytes.NewReader(payload))
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, info, fmt.Errorf("cohere rerank request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, info, fmt.Errorf("cohere rerank error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Results []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, info, fmt.Errorf("decode cohere response: %w", err)
	}
	out := make([]RerankResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(req.Documents) {
			continue
		}
		out = append(out, RerankResult{Index: r.Index, Score: r.RelevanceScore})
	}
	return out, info, nil
}

func resolveCohereKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("LEXFLOW_COHERE_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("COHERE_API_KEY")
}

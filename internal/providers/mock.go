package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MockProvider is the deterministic offline provider used in tests and
// when no API keys are configured. It answers every surface: embed,
// generate, rerank.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 1536
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	_ = ctx
	dim := req.Dimension
	if dim <= 0 {
		dim = m.dim
	}
	vectors := make([][]float32, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		vectors = append(vectors, deterministicVector(input, dim))
	}
	return vectors, ProviderInfo{Name: "mock", Model: fmt.Sprintf("mock-embed-%d", dim), Key: "mock"}, nil
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
	op := strings.ToLower(req.Operation)
	switch {
	case strings.Contains(op, "metadata"):
		return GenerateResponse{Text: `{"case_title":"Mock Appellant vs Mock Respondent","case_number":"Crl.A. 1/2020","outcome":"Appeal Dismissed.","winning_party":"Respondent","court_name":"Mock High Court","city":"Mockpur","year_of_judgment":2020}`}, info, nil
	case strings.Contains(op, "atomize"):
		quote := firstWords(req.Prompt, 8)
		text := `[{"content":"Deterministic proposition derived from the paragraph.","supporting_quote":"` + quote + `","section_type":"reasoning","party_role":"court","legal_topics":["mock"]}]`
		return GenerateResponse{Text: text}, info, nil
	case strings.Contains(op, "ask"):
		b := strings.Builder{}
		b.WriteString("Deterministic answer grounded in the retrieved passages.")
		for i := range req.Context {
			b.WriteString(" [C")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString("]")
		}
		return GenerateResponse{Text: b.String()}, info, nil
	default:
		return GenerateResponse{Text: "Mock response."}, info, nil
	}
}

func (m *MockProvider) Rerank(ctx context.Context, req RerankRequest) ([]RerankResult, ProviderInfo, error) {
	_ = ctx
	out := make([]RerankResult, 0, len(req.Documents))
	for i, d := range req.Documents {
		h := sha256.Sum256([]byte(req.Query + "\x00" + d))
		score := float64(binary.BigEndian.Uint32(h[:4])%1000) / 1000.0
		out = append(out, RerankResult{Index: i, Score: score})
	}
	return out, ProviderInfo{Name: "mock", Model: "mock-rerank-v1", Key: "mock"}, nil
}

// firstWords pulls a verbatim span from the tail section of an atomize
// prompt so the mock's supporting quote validates against its paragraph.
func firstWords(prompt string, n int) string {
	idx := strings.LastIndex(prompt, "Paragraph:\n")
	if idx >= 0 {
		prompt = prompt[idx+len("Paragraph:\n"):]
	}
	prompt = strings.NewReplacer(`"`, "", `\`, "").Replace(prompt)
	fields := strings.Fields(prompt)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		v := float32(u%2000)/1000.0 - 1.0
		vec[i] = v
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)+1e-9))
	for i := range v {
		v[i] *= inv
	}
	return v
}

package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider serves both chat completions and embeddings through the
// OpenAI API (or any OpenAI-compatible endpoint via base URL override).
type OpenAIProvider struct {
	keyName    string
	chatModel  string
	embedModel string
	client     *openai.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	cfg := openai.DefaultConfig(resolveOpenAIKey(keyName))
	if base := os.Getenv("LEXFLOW_OPENAI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	chatModel := os.Getenv("LEXFLOW_OPENAI_CHAT_MODEL")
	if strings.TrimSpace(chatModel) == "" {
		chatModel = openai.GPT4oMini
	}
	embedModel := os.Getenv("LEXFLOW_OPENAI_EMBED_MODEL")
	if strings.TrimSpace(embedModel) == "" {
		embedModel = string(openai.SmallEmbedding3)
	}
	return &OpenAIProvider{
		keyName:    keyName,
		chatModel:  chatModel,
		embedModel: embedModel,
		client:     openai.NewClientWithConfig(cfg),
	}
}

func (o *OpenAIProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.embedModel, Key: o.keyName}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Model: openai.EmbeddingModel(o.embedModel),
		Input: req.Inputs,
	})
	if err != nil {
		return nil, info, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(req.Inputs) {
		return nil, info, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(req.Inputs))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, info, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, info, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.chatModel, Key: o.keyName}
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nContext:\n" + strings.Join(req.Context, "\n\n")
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a legal research assistant. Answer only from the provided documents and cite them."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("openai returned empty choices")
	}
	return GenerateResponse{Text: resp.Choices[0].Message.Content}, info, nil
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		if k := os.Getenv("LEXFLOW_OPENAI_KEY_" + strings.ToUpper(alias)); k != "" {
			return k
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}

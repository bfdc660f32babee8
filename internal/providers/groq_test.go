package providers

import "testing"

func TestResolveGroqKeyAlias(t *testing.T) {
	t.Setenv("LEXFLOW_GROQ_KEY_ALIAS1", "k-alias")
	t.Setenv("GROQ_API_KEY", "k-default")
	if got := resolveGroqKey("alias1"); got != "k-alias" {
		t.Fatalf("alias lookup: got %q want %q", got, "k-alias")
	}
	if got := resolveGroqKey("missing"); got != "k-default" {
		t.Fatalf("fallback for unknown alias: got %q want %q", got, "k-default")
	}
	if got := resolveGroqKey(""); got != "k-default" {
		t.Fatalf("fallback without alias: got %q want %q", got, "k-default")
	}
}

func TestNewGroqProviderDefaultModel(t *testing.T) {
	t.Setenv("LEXFLOW_GROQ_MODEL", "")
	p := NewGroqProvider("alias1")
	if p.model != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected default model %q", p.model)
	}
}

package judgment

import (
	"context"
	"strings"
	"testing"

	"lexflow/internal/models"
	"lexflow/internal/util"
)

// scriptedLLM returns its responses in order and records the prompts it
// received.
type scriptedLLM struct {
	responses []string
	prompts   []string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	i := len(s.prompts) - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func TestExtractGlobalMetadataRetriesOnceStricter(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"this is not json",
		`{"case_title": "A vs B", "outcome": "dismissed"}`,
	}}
	a := NewAtomizer(llm)
	meta, err := a.ExtractGlobalMetadata(context.Background(), "some judgment text")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Outcome != models.OutcomeDismissed {
		t.Fatalf("outcome = %s", meta.Outcome)
	}
	if len(llm.prompts) != 2 {
		t.Fatalf("llm called %d times, want 2", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[1], "ONLY the JSON") {
		t.Fatal("retry prompt is not stricter")
	}
	if strings.Contains(llm.prompts[0], "ONLY the JSON") {
		t.Fatal("first prompt should not carry the retry suffix")
	}
}

func TestExtractGlobalMetadataFailsAfterSecondMalformed(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"nope", "still nope"}}
	a := NewAtomizer(llm)
	if _, err := a.ExtractGlobalMetadata(context.Background(), "text"); err == nil {
		t.Fatal("expected error after two malformed responses")
	}
	if len(llm.prompts) != 2 {
		t.Fatalf("llm called %d times, want exactly 2", len(llm.prompts))
	}
}

func TestAtomizeParagraphFiltersUngroundedUnits(t *testing.T) {
	paragraph := "The court held that the confession was extracted under duress and cannot be relied upon for conviction."
	llm := &scriptedLLM{responses: []string{`[
		{"content": "Confession held inadmissible.",
		 "supporting_quote": "the confession was extracted under duress",
		 "section_type": "holding", "party_role": "court"},
		{"content": "Fabricated claim.",
		 "supporting_quote": "the witness testimony was found to be entirely reliable and truthful",
		 "section_type": "holding", "party_role": "court"}
	]`}}
	a := NewAtomizer(llm)
	res := a.AtomizeParagraph(context.Background(), 3, paragraph)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if len(res.Accepted) != 1 {
		t.Fatalf("accepted %d units, want 1", len(res.Accepted))
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("rejected %d units, want 1", len(res.Rejected))
	}
	if res.Index != 3 {
		t.Fatalf("index = %d", res.Index)
	}
	warn := res.Rejected[0]
	if warn.Content != "Fabricated claim." {
		t.Fatalf("warning lost the rejected content: %q", warn.Content)
	}
	if warn.SupportingQuote == "" {
		t.Fatal("warning lost the fabricated quote")
	}
	if warn.ParagraphIndex != 3 {
		t.Fatalf("warning paragraph index = %d", warn.ParagraphIndex)
	}
	if warn.Reason != util.ErrGroundingViolation.Error() {
		t.Fatalf("warning reason = %q", warn.Reason)
	}
	if warn.BestScore >= DefaultQuoteThreshold {
		t.Fatalf("best score %.2f should sit below the validation threshold", warn.BestScore)
	}
}

func TestMetadataExcerptHeadAndTail(t *testing.T) {
	a := NewAtomizer(nil)
	a.MetadataWindow = 10
	text := strings.Repeat("h", 10) + strings.Repeat("m", 50) + strings.Repeat("t", 10)
	got := a.MetadataExcerpt(text)
	if got != strings.Repeat("h", 10)+"\n...\n"+strings.Repeat("t", 10) {
		t.Fatalf("got %q", got)
	}
	short := "short document"
	if a.MetadataExcerpt(short) != short {
		t.Fatal("short document should pass through whole")
	}
}

func TestSkipParagraph(t *testing.T) {
	a := NewAtomizer(nil)
	if !a.SkipParagraph("Short line.") {
		t.Fatal("short paragraph not skipped")
	}
	// Critical outcomes bypass the length floor.
	if a.SkipParagraph("Appeal dismissed.") {
		t.Fatal("critical outcome paragraph skipped")
	}
	long := strings.Repeat("the facts of the case are ", 10)
	if a.SkipParagraph(long) {
		t.Fatal("long paragraph skipped")
	}
}

func TestSplitParagraphs(t *testing.T) {
	paras := SplitParagraphs("first paragraph\n\nsecond paragraph\n \n\nthird")
	if len(paras) != 3 {
		t.Fatalf("got %d paragraphs: %q", len(paras), paras)
	}
}

func TestBuildJudgmentChunks(t *testing.T) {
	meta := models.GlobalMetadata{
		CaseTitle: "A vs B", CaseNumber: "412/2019", Outcome: models.OutcomeDismissed,
		CourtName: "Bombay High Court", YearOfJudgment: 2019,
	}
	results := []ParagraphResult{
		{Index: 2, Accepted: []models.AtomicUnit{
			{Content: "Confession inadmissible.", SupportingQuote: "under duress", SectionType: models.SectionHolding, PartyRole: models.RoleCourt, LegalTopics: []string{"evidence"}},
		}},
	}
	chunks := BuildJudgmentChunks("job9", "a_vs_b", meta, results)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	c := chunks[0]
	if c.ChunkID != "a_vs_b_2_0" {
		t.Fatalf("chunk id = %s", c.ChunkID)
	}
	if c.Metadata.ParagraphIndex != 2 || c.Metadata.Outcome != models.OutcomeDismissed {
		t.Fatalf("metadata = %+v", c.Metadata)
	}
	for _, want := range []string{"Case: A vs B", "Year: 2019", "Section: holding", "evidence", "Quote:"} {
		if !strings.Contains(c.EmbedText, want) {
			t.Fatalf("embed text missing %q:\n%s", want, c.EmbedText)
		}
	}
}

func TestBuildAtomizePromptRequiresPronounResolution(t *testing.T) {
	p := BuildAtomizePrompt("The appellant argued that he was denied a hearing.", false)
	if !strings.Contains(p, "Resolve pronouns") {
		t.Fatal("atomize prompt must instruct the model to resolve pronouns to named entities")
	}
}

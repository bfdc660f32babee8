package judgment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"lexflow/internal/models"
	"lexflow/internal/util"
)

// LLM is the narrow completion surface the atomizer needs. The provider
// manager satisfies it through a small adapter in the activities layer.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Atomizer struct {
	LLM             LLM
	MetadataWindow  int
	MinParagraphLen int
	QuoteThreshold  float64
}

func NewAtomizer(llm LLM) *Atomizer {
	return &Atomizer{
		LLM:             llm,
		MetadataWindow:  3000,
		MinParagraphLen: 80,
		QuoteThreshold:  DefaultQuoteThreshold,
	}
}

// MetadataExcerpt returns the head and tail windows of the document.
// Case captions live at the top, dispositions at the bottom; the middle
// never changes the case-level metadata.
func (a *Atomizer) MetadataExcerpt(text string) string {
	w := a.MetadataWindow
	if w <= 0 {
		w = 3000
	}
	r := []rune(text)
	if len(r) <= 2*w {
		return text
	}
	return string(r[:w]) + "\n...\n" + string(r[len(r)-w:])
}

// ExtractGlobalMetadata runs the case-level metadata pass. Malformed
// output gets exactly one stricter retry before failing.
func (a *Atomizer) ExtractGlobalMetadata(ctx context.Context, text string) (models.GlobalMetadata, error) {
	excerpt := a.MetadataExcerpt(text)
	raw, err := a.LLM.Complete(ctx, BuildMetadataPrompt(excerpt, false))
	if err != nil {
		return models.GlobalMetadata{}, fmt.Errorf("metadata completion: %w", err)
	}
	meta, err := ParseGlobalMetadata(raw)
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, util.ErrMalformedOutput) {
		return models.GlobalMetadata{}, err
	}
	raw, err = a.LLM.Complete(ctx, BuildMetadataPrompt(excerpt, true))
	if err != nil {
		return models.GlobalMetadata{}, fmt.Errorf("metadata retry completion: %w", err)
	}
	return ParseGlobalMetadata(raw)
}

// ParagraphResult reports one paragraph's atomization.
type ParagraphResult struct {
	Index    int
	Accepted []models.AtomicUnit
	Rejected []models.UnitWarning
	Err      error
}

// AtomizeParagraph mines one paragraph into grounded atomic units.
// Units whose supporting quote fails validation are retained as
// warnings, with the best window score so a reviewer can judge how far
// off the quote was; they never poison the rest of the paragraph.
func (a *Atomizer) AtomizeParagraph(ctx context.Context, index int, paragraph string) ParagraphResult {
	res := ParagraphResult{Index: index}
	raw, err := a.LLM.Complete(ctx, BuildAtomizePrompt(paragraph, false))
	if err != nil {
		res.Err = fmt.Errorf("atomize completion: %w", err)
		return res
	}
	units, err := ParseAtomicUnits(raw)
	if err != nil && errors.Is(err, util.ErrMalformedOutput) {
		raw, err = a.LLM.Complete(ctx, BuildAtomizePrompt(paragraph, true))
		if err != nil {
			res.Err = fmt.Errorf("atomize retry completion: %w", err)
			return res
		}
		units, err = ParseAtomicUnits(raw)
	}
	if err != nil {
		res.Err = err
		return res
	}
	for _, u := range units {
		if !ValidateQuote(u.SupportingQuote, paragraph, a.QuoteThreshold) {
			res.Rejected = append(res.Rejected, models.UnitWarning{
				ParagraphIndex:  index,
				Content:         u.Content,
				SupportingQuote: u.SupportingQuote,
				BestScore:       BestQuoteScore(u.SupportingQuote, paragraph),
				Reason:          util.ErrGroundingViolation.Error(),
			})
			continue
		}
		res.Accepted = append(res.Accepted, u)
	}
	return res
}

// SkipParagraph reports paragraphs too short to mine. Paragraphs that
// state a critical outcome are always kept regardless of length.
func (a *Atomizer) SkipParagraph(paragraph string) bool {
	min := a.MinParagraphLen
	if min <= 0 {
		min = 80
	}
	if IsCriticalOutcome(paragraph) {
		return false
	}
	return len(strings.TrimSpace(paragraph)) < min
}

var criticalOutcomeRe = regexp.MustCompile(`(?i)\b(dismissed|allowed|acquitted|convicted|granted|rejected)\b`)

// IsCriticalOutcome flags paragraphs that state a disposition.
func IsCriticalOutcome(paragraph string) bool {
	return criticalOutcomeRe.MatchString(paragraph)
}

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs breaks cleaned judgment text on blank lines.
func SplitParagraphs(text string) []string {
	parts := paragraphSplitRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// BuildJudgmentChunks converts accepted units into indexable chunks.
// The embedding text is the enriched composite of case metadata and the
// unit so that retrieval can match on parties, outcome and topic words.
func BuildJudgmentChunks(jobID, stem string, meta models.GlobalMetadata, results []ParagraphResult) []models.Chunk {
	var chunks []models.Chunk
	for _, pr := range results {
		for j, u := range pr.Accepted {
			chunkID := fmt.Sprintf("%s_%d_%d", stem, pr.Index, j)
			chunks = append(chunks, models.Chunk{
				ChunkID:   chunkID,
				JobID:     jobID,
				Content:   u.Content,
				EmbedText: judgmentEmbedText(meta, u),
				Metadata: models.ChunkMetadata{
					DocumentID:      jobID,
					DocumentType:    models.DocTypeJudgment,
					CaseTitle:       meta.CaseTitle,
					CaseNumber:      meta.CaseNumber,
					Outcome:         meta.Outcome,
					WinningParty:    meta.WinningParty,
					CourtName:       meta.CourtName,
					YearOfJudgment:  meta.YearOfJudgment,
					SectionType:     u.SectionType,
					PartyRole:       u.PartyRole,
					LegalTopics:     u.LegalTopics,
					SupportingQuote: u.SupportingQuote,
					ParagraphIndex:  pr.Index,
				},
			})
		}
	}
	return chunks
}

func judgmentEmbedText(meta models.GlobalMetadata, u models.AtomicUnit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case: %s | No: %s | Year: %d | Court: %s | Outcome: %s\n",
		meta.CaseTitle, meta.CaseNumber, meta.YearOfJudgment, meta.CourtName, meta.Outcome)
	fmt.Fprintf(&b, "Section: %s | Role: %s | Topics: %s\n",
		u.SectionType, u.PartyRole, strings.Join(u.LegalTopics, ", "))
	b.WriteString("Content:\n")
	b.WriteString(u.Content)
	if u.SupportingQuote != "" {
		b.WriteString("\nQuote:\n")
		b.WriteString(u.SupportingQuote)
	}
	return b.String()
}

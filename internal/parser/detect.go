package parser

import (
	"regexp"
	"strings"

	"lexflow/internal/models"
)

type StrategyName string

const (
	StrategyNarrative StrategyName = "narrative"
	StrategyStrict    StrategyName = "strict"
	StrategySchedule  StrategyName = "schedule"
)

type DetectionStats struct {
	SectionHeads    int `json:"section_heads"`
	ChapterHeads    int `json:"chapter_heads"`
	ScheduleMarkers int `json:"schedule_markers"`
	Illustrations   int `json:"illustrations"`
	Provisos        int `json:"provisos"`
	JudgmentCues    int `json:"judgment_cues"`
}

var (
	sectionHeadRe = regexp.MustCompile(`(?m)^\s*(\d+[A-Z]?)\.\s+\S`)
	chapterRe     = regexp.MustCompile(`(?m)^\s*CHAPTER\s+[IVXLC0-9]+`)
	scheduleRe    = regexp.MustCompile(`(?m)^\s*(THE\s+.*SCHEDULE|SCHEDULE\s+[IVXLC0-9]+)`)
	illustrationRe = regexp.MustCompile(`(?m)^\s*Illustrations?\b`)
	provisoRe      = regexp.MustCompile(`(?i)\bprovided that\b|\bproviso\b`)

	versusRe       = regexp.MustCompile(`(?i)\b(vs\.?|versus)\b`)
	judgmentWordRe = regexp.MustCompile(`(?m)^\s*J\s*U\s*D\s*G\s*M\s*E\s*N\s*T|\bJUDGMENT\b`)
	appealNoRe     = regexp.MustCompile(`(?i)\b(criminal|civil)?\s*(appeal|petition|writ)\s+no`)
	authoredRe     = regexp.MustCompile(`(?m),\s*J\.\s*$`)
)

// CountMarkers tallies the structural cues both the classifier and the
// strategy selector read.
func CountMarkers(text string) DetectionStats {
	return DetectionStats{
		SectionHeads:    len(sectionHeadRe.FindAllString(text, -1)),
		ChapterHeads:    len(chapterRe.FindAllString(text, -1)),
		ScheduleMarkers: len(scheduleRe.FindAllString(text, -1)),
		Illustrations:   len(illustrationRe.FindAllString(text, -1)),
		Provisos:        len(provisoRe.FindAllString(text, -1)),
		JudgmentCues: len(versusRe.FindAllString(text, -1)) +
			len(judgmentWordRe.FindAllString(text, -1)) +
			len(appealNoRe.FindAllString(text, -1)) +
			len(authoredRe.FindAllString(text, -1)),
	}
}

// Classify routes a document to the statute chunkers or the judgment
// atomizer. Ambiguous documents default to judgment: the atomizer
// tolerates arbitrary prose, the chunkers do not.
func Classify(text string) (models.DocumentType, DetectionStats) {
	stats := CountMarkers(text)
	statuteSignal := stats.SectionHeads + stats.ChapterHeads*3 + stats.ScheduleMarkers*3 + stats.Illustrations*2
	if statuteSignal > stats.JudgmentCues && stats.SectionHeads >= 5 {
		return models.DocTypeStatute, stats
	}
	return models.DocTypeJudgment, stats
}

// SelectStrategy picks the statute chunking strategy from marker counts.
func SelectStrategy(stats DetectionStats) StrategyName {
	if stats.ScheduleMarkers > 0 && stats.SectionHeads < 5 {
		return StrategySchedule
	}
	if stats.Illustrations >= 5 {
		return StrategyNarrative
	}
	if stats.Provisos >= 10 {
		return StrategyStrict
	}
	return StrategyNarrative
}

var actStopWords = map[string]bool{
	"the": true, "of": true, "and": true, "an": true, "a": true,
}

// DetectActName finds the statute title near the top of the document and
// returns both the full title and an initialism used in chunk IDs
// ("The Indian Penal Code" -> "IPC").
func DetectActName(text string) (title string, abbrev string) {
	lines := strings.Split(text, "\n")
	limit := len(lines)
	if limit > 30 {
		limit = 30
	}
	for _, ln := range lines[:limit] {
		t := strings.TrimSpace(ln)
		lower := strings.ToLower(t)
		if len(t) < 8 || len(t) > 90 {
			continue
		}
		if strings.Contains(lower, "act") || strings.Contains(lower, "code") {
			return t, initialism(t)
		}
	}
	return "", "ACT"
}

func initialism(title string) string {
	var b strings.Builder
	for _, w := range strings.Fields(title) {
		if actStopWords[strings.ToLower(strings.Trim(w, ",."))] {
			continue
		}
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z' {
			b.WriteRune(r[0])
		}
	}
	if b.Len() == 0 {
		return "ACT"
	}
	return b.String()
}

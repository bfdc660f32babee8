package parser

import (
	"fmt"
	"regexp"
	"strings"

	"lexflow/internal/models"
)

// Section is one chunk produced by a statute strategy.
type Section struct {
	ID       string
	Chapter  string
	Schedule bool
	Body     string
}

// Strategy turns statute text into sections. All three strategies share
// one scan shape: each line is either a boundary (starts a new section),
// an attach line (joins the current section), or plain body. Lines seen
// before the first boundary are dropped.
type Strategy interface {
	Name() StrategyName
	Split(text string) []Section
}

func StrategyFor(name StrategyName) Strategy {
	switch name {
	case StrategyStrict:
		return StrictStrategy{}
	case StrategySchedule:
		return ScheduleStrategy{}
	default:
		return NarrativeStrategy{}
	}
}

var (
	boundaryRe     = regexp.MustCompile(`^\s*(\d+[A-Z]?)\.\s+`)
	attachRe       = regexp.MustCompile(`^\s*(Illustrations?\b|Explanation\b|Proviso\b|Provided that\b)`)
	chapterHeadRe  = regexp.MustCompile(`^\s*CHAPTER\s+([IVXLC0-9]+)`)
	scheduleHeadRe = regexp.MustCompile(`^\s*(THE\s+.*SCHEDULE|SCHEDULE\s+([IVXLC0-9]+))`)
	entryRe        = regexp.MustCompile(`^\s*(\d+[A-Z]?)\.\s+`)
)

// NarrativeStrategy handles acts whose sections carry illustrations and
// explanations that must stay attached to their section.
type NarrativeStrategy struct{}

func (NarrativeStrategy) Name() StrategyName { return StrategyNarrative }

func (NarrativeStrategy) Split(text string) []Section {
	var (
		sections []Section
		cur      *Section
		chapter  string
	)
	lines := StripMarginNotes(strings.Split(FixSpacing(text), "\n"))
	for _, ln := range lines {
		if IsNoiseLine(ln) {
			continue
		}
		if m := chapterHeadRe.FindStringSubmatch(ln); m != nil {
			chapter = strings.TrimSpace(ln)
			appendLine(cur, ln)
			continue
		}
		if attachRe.MatchString(ln) {
			appendLine(cur, ln)
			continue
		}
		if m := boundaryRe.FindStringSubmatch(ln); m != nil {
			if cur != nil {
				sections = append(sections, *cur)
			}
			cur = &Section{ID: m[1], Chapter: chapter, Body: strings.TrimSpace(ln)}
			continue
		}
		appendLine(cur, ln)
	}
	if cur != nil {
		sections = append(sections, *cur)
	}
	return sections
}

// StrictStrategy splits on section heads only; every other line attaches
// to the current section. Used for acts dense with provisos, where
// illustration-style cues are unreliable boundaries.
type StrictStrategy struct{}

func (StrictStrategy) Name() StrategyName { return StrategyStrict }

func (StrictStrategy) Split(text string) []Section {
	var (
		sections []Section
		cur      *Section
		chapter  string
	)
	lines := StripMarginNotes(strings.Split(FixSpacing(text), "\n"))
	for _, ln := range lines {
		if IsNoiseLine(ln) {
			continue
		}
		if chapterHeadRe.MatchString(ln) {
			chapter = strings.TrimSpace(ln)
		}
		if m := boundaryRe.FindStringSubmatch(ln); m != nil {
			if cur != nil {
				sections = append(sections, *cur)
			}
			cur = &Section{ID: m[1], Chapter: chapter, Body: strings.TrimSpace(ln)}
			continue
		}
		appendLine(cur, ln)
	}
	if cur != nil {
		sections = append(sections, *cur)
	}
	return sections
}

// ScheduleStrategy splits tabular schedules: a schedule heading opens a
// scope and numbered entries inside it become sections.
type ScheduleStrategy struct{}

func (ScheduleStrategy) Name() StrategyName { return StrategySchedule }

func (ScheduleStrategy) Split(text string) []Section {
	var (
		sections []Section
		cur      *Section
		schedule string
	)
	lines := StripMarginNotes(strings.Split(FixSpacing(text), "\n"))
	for _, ln := range lines {
		if IsNoiseLine(ln) {
			continue
		}
		if scheduleHeadRe.MatchString(ln) {
			if cur != nil {
				sections = append(sections, *cur)
				cur = nil
			}
			schedule = strings.TrimSpace(ln)
			continue
		}
		if schedule == "" {
			continue
		}
		if m := entryRe.FindStringSubmatch(ln); m != nil {
			if cur != nil {
				sections = append(sections, *cur)
			}
			cur = &Section{ID: m[1], Chapter: schedule, Schedule: true, Body: strings.TrimSpace(ln)}
			continue
		}
		appendLine(cur, ln)
	}
	if cur != nil {
		sections = append(sections, *cur)
	}
	return sections
}

func appendLine(cur *Section, ln string) {
	if cur == nil {
		return
	}
	if cur.Body != "" {
		cur.Body += "\n"
	}
	cur.Body += strings.TrimSpace(ln)
}

// BuildStatuteChunks converts sections to indexable chunks with stable
// IDs and the hierarchical embedding text the retriever expects.
func BuildStatuteChunks(jobID, actTitle, actAbbrev string, sections []Section) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(sections))
	for _, s := range sections {
		id := fmt.Sprintf("%s_Sec_%s", actAbbrev, s.ID)
		if s.Schedule {
			id = fmt.Sprintf("%s_Schedule_%s", actAbbrev, s.ID)
		}
		embed := fmt.Sprintf("[%s]", actAbbrev)
		if s.Chapter != "" {
			embed += fmt.Sprintf(" > [%s]", s.Chapter)
		}
		embed += fmt.Sprintf(" > Section %s : %s", s.ID, s.Body)
		chunks = append(chunks, models.Chunk{
			ChunkID:   id,
			JobID:     jobID,
			Content:   s.Body,
			EmbedText: embed,
			Metadata: models.ChunkMetadata{
				DocumentID:   jobID,
				DocumentType: models.DocTypeStatute,
				ActName:      actTitle,
				Chapter:      s.Chapter,
				SectionID:    s.ID,
			},
		})
	}
	return chunks
}

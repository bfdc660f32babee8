package parser

import (
	"strings"
	"testing"
)

const narrativeSample = `THE INDIAN PENAL CODE
An introductory recital that precedes any numbered section.
CHAPTER XVII
415. Cheating. Whoever, by deceiving any person, fraudulently induces
the person so deceived to deliver any property.
Illustrations
(a) A, by falsely pretending to be in the Civil Service, deceives Z.
416. Cheating by personation. A person is said to cheat by personation
if he cheats by pretending to be some other person.
`

func TestNarrativeStrategyAttachesIllustrations(t *testing.T) {
	sections := NarrativeStrategy{}.Split(narrativeSample)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].ID != "415" || sections[1].ID != "416" {
		t.Fatalf("ids = %s, %s", sections[0].ID, sections[1].ID)
	}
	if !strings.Contains(sections[0].Body, "falsely pretending") {
		t.Fatalf("illustration not attached: %q", sections[0].Body)
	}
	if strings.Contains(sections[1].Body, "falsely pretending") {
		t.Fatal("illustration leaked into next section")
	}
	if sections[0].Chapter == "" {
		t.Fatal("chapter label missing")
	}
}

func TestNarrativeStrategyDropsPreamble(t *testing.T) {
	sections := NarrativeStrategy{}.Split(narrativeSample)
	for _, s := range sections {
		if strings.Contains(s.Body, "introductory recital") {
			t.Fatal("pre-boundary text survived")
		}
	}
}

func TestStrictStrategyBoundariesOnly(t *testing.T) {
	text := `1. First section text.
Provided that an exception applies to offences under this part.
2. Second section text.
continuation of the second section
`
	sections := StrictStrategy{}.Split(text)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if !strings.Contains(sections[0].Body, "Provided that") {
		t.Fatal("proviso should attach to its section")
	}
	if !strings.Contains(sections[1].Body, "continuation") {
		t.Fatal("continuation line lost")
	}
}

func TestScheduleStrategyScopesEntries(t *testing.T) {
	text := `Content before any schedule is ignored.
THE FIRST SCHEDULE
101. Entry about classification of offences.
more detail for the entry
102. Another entry.
`
	sections := ScheduleStrategy{}.Split(text)
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if !sections[0].Schedule {
		t.Fatal("schedule flag not set")
	}
	if !strings.Contains(sections[0].Body, "more detail") {
		t.Fatal("entry continuation lost")
	}
	for _, s := range sections {
		if strings.Contains(s.Body, "ignored") {
			t.Fatal("pre-schedule content survived")
		}
	}
}

// Concatenating all section bodies reproduces every substantive line of
// the input exactly once.
func TestSplitPreservesSubstantiveLines(t *testing.T) {
	sections := NarrativeStrategy{}.Split(narrativeSample)
	var all strings.Builder
	for _, s := range sections {
		all.WriteString(s.Body)
		all.WriteString("\n")
	}
	joined := all.String()
	for _, want := range []string{"Cheating.", "fraudulently induces", "deceives Z."} {
		if strings.Count(joined, want) != 1 {
			t.Fatalf("%q appears %d times", want, strings.Count(joined, want))
		}
	}
}

func TestBuildStatuteChunks(t *testing.T) {
	sections := []Section{
		{ID: "420", Chapter: "CHAPTER XVII", Body: "420. Cheating and dishonestly inducing delivery of property."},
		{ID: "1", Schedule: true, Chapter: "THE FIRST SCHEDULE", Body: "1. Classification entry."},
	}
	chunks := BuildStatuteChunks("job1", "The Indian Penal Code", "IPC", sections)
	if chunks[0].ChunkID != "IPC_Sec_420" {
		t.Fatalf("chunk id = %s", chunks[0].ChunkID)
	}
	if chunks[1].ChunkID != "IPC_Schedule_1" {
		t.Fatalf("schedule chunk id = %s", chunks[1].ChunkID)
	}
	wantPrefix := "[IPC] > [CHAPTER XVII] > Section 420 : "
	if !strings.HasPrefix(chunks[0].EmbedText, wantPrefix) {
		t.Fatalf("embed text = %q", chunks[0].EmbedText)
	}
	if chunks[0].Metadata.SectionID != "420" || chunks[0].Metadata.ActName != "The Indian Penal Code" {
		t.Fatalf("metadata = %+v", chunks[0].Metadata)
	}
}

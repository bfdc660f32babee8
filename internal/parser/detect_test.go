package parser

import (
	"strings"
	"testing"

	"lexflow/internal/models"
)

const statuteSample = `THE INDIAN PENAL CODE
CHAPTER I
1. Title and extent of operation of the Code.
2. Punishment of offences committed within India.
3. Punishment of offences committed beyond India.
4. Extension of Code to extra-territorial offences.
5. Certain laws not to be affected by this Act.
6. Definitions in the Code to be understood subject to exceptions.
`

const judgmentSample = `State of Maharashtra versus Ramesh Kumar
Criminal Appeal No. 412 of 2019
JUDGMENT
The appellant was convicted under Section 302.
Sharma, J.
`

func TestClassifyStatute(t *testing.T) {
	dt, stats := Classify(statuteSample)
	if dt != models.DocTypeStatute {
		t.Fatalf("got %s, want statute (stats %+v)", dt, stats)
	}
	if stats.SectionHeads < 5 {
		t.Fatalf("section heads = %d", stats.SectionHeads)
	}
}

func TestClassifyJudgment(t *testing.T) {
	dt, _ := Classify(judgmentSample)
	if dt != models.DocTypeJudgment {
		t.Fatalf("got %s, want judgment", dt)
	}
}

func TestClassifyDefaultsToJudgment(t *testing.T) {
	// No structural cues either way.
	dt, _ := Classify("Some unstructured prose about nothing in particular.")
	if dt != models.DocTypeJudgment {
		t.Fatalf("ambiguous text routed to %s", dt)
	}
}

func TestSelectStrategy(t *testing.T) {
	cases := []struct {
		stats DetectionStats
		want  StrategyName
	}{
		{DetectionStats{ScheduleMarkers: 2, SectionHeads: 1}, StrategySchedule},
		{DetectionStats{SectionHeads: 100, Illustrations: 40}, StrategyNarrative},
		{DetectionStats{SectionHeads: 100, Provisos: 60}, StrategyStrict},
		{DetectionStats{SectionHeads: 20}, StrategyNarrative},
	}
	for _, c := range cases {
		if got := SelectStrategy(c.stats); got != c.want {
			t.Fatalf("SelectStrategy(%+v) = %s, want %s", c.stats, got, c.want)
		}
	}
}

func TestDetectActName(t *testing.T) {
	title, abbrev := DetectActName(statuteSample)
	if !strings.Contains(title, "INDIAN PENAL CODE") {
		t.Fatalf("title = %q", title)
	}
	if abbrev != "IPC" {
		t.Fatalf("abbrev = %q", abbrev)
	}
}

func TestDetectActNameFallback(t *testing.T) {
	title, abbrev := DetectActName("no statute title here\nat all")
	if title != "" || abbrev != "ACT" {
		t.Fatalf("got %q/%q", title, abbrev)
	}
}

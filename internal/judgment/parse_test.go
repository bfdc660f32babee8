package judgment

import (
	"errors"
	"testing"

	"lexflow/internal/models"
	"lexflow/internal/util"
)

func TestParseGlobalMetadata(t *testing.T) {
	raw := "```json\n" + `{
		"case_title": " State of Maharashtra vs Ramesh Kumar ",
		"case_number": "Crl.A. 412/2019",
		"outcome": "Appeal Dismissed.",
		"winning_party": "State of Maharashtra",
		"court_name": "Bombay High Court",
		"city": "Mumbai",
		"year_of_judgment": 2019
	}` + "\n```"
	meta, err := ParseGlobalMetadata(raw)
	if err != nil {
		t.Fatal(err)
	}
	if meta.CaseTitle != "State of Maharashtra vs Ramesh Kumar" {
		t.Fatalf("title = %q", meta.CaseTitle)
	}
	if meta.Outcome != models.OutcomeDismissed {
		t.Fatalf("outcome = %s", meta.Outcome)
	}
	if meta.YearOfJudgment != 2019 {
		t.Fatalf("year = %d", meta.YearOfJudgment)
	}
}

func TestParseGlobalMetadataMalformed(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		`{"case_number": "412"}`,
		`{"case_title": "A vs B", "outcome": 7}`,
	} {
		_, err := ParseGlobalMetadata(raw)
		if !errors.Is(err, util.ErrMalformedOutput) {
			t.Fatalf("%q: err = %v", raw, err)
		}
	}
}

func TestParseAtomicUnits(t *testing.T) {
	raw := `[
		{"content": "The court held the confession inadmissible.",
		 "supporting_quote": "the confession cannot be relied upon",
		 "section_type": "holding", "party_role": "court",
		 "legal_topics": ["evidence", "confession"]}
	]`
	units, err := ParseAtomicUnits(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].SectionType != models.SectionHolding {
		t.Fatalf("units = %+v", units)
	}
}

func TestParseAtomicUnitsEmptyList(t *testing.T) {
	units, err := ParseAtomicUnits("[]")
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 0 {
		t.Fatalf("units = %+v", units)
	}
}

func TestParseAtomicUnitsBadEnum(t *testing.T) {
	raw := `[{"content": "x", "supporting_quote": "x", "section_type": "preface", "party_role": "court"}]`
	_, err := ParseAtomicUnits(raw)
	if !errors.Is(err, util.ErrMalformedOutput) {
		t.Fatalf("err = %v", err)
	}
}

func TestCanonicalOutcome(t *testing.T) {
	cases := map[string]models.Outcome{
		"Appeal Dismissed.":            models.OutcomeDismissed,
		"appeal partly allowed":        models.OutcomePartlyAllowed,
		"The accused stands acquitted": models.OutcomeAcquitted,
		"Convicted under Section 302":  models.OutcomeConvicted,
		"Petition allowed":             models.OutcomeAllowed,
		"Disposed of":                  models.OutcomeDisposed,
		"":                             models.OutcomeUnknown,
		"adjourned sine die":           models.OutcomeUnknown,
	}
	for in, want := range cases {
		if got := CanonicalOutcome(in); got != want {
			t.Fatalf("CanonicalOutcome(%q) = %s, want %s", in, got, want)
		}
	}
}

package judgment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"lexflow/internal/models"
	"lexflow/internal/util"
)

const metadataSchemaJSON = `{
  "type": "object",
  "required": ["case_title", "outcome"],
  "properties": {
    "case_title": {"type": "string"},
    "case_number": {"type": "string"},
    "outcome": {"type": "string"},
    "winning_party": {"type": "string"},
    "court_name": {"type": "string"},
    "city": {"type": "string"},
    "year_of_judgment": {"type": "integer"}
  }
}`

const unitsSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["content", "supporting_quote", "section_type", "party_role"],
    "properties": {
      "content": {"type": "string", "minLength": 1},
      "supporting_quote": {"type": "string"},
      "section_type": {"enum": ["facts", "issue", "argument", "reasoning", "holding", "order"]},
      "party_role": {"enum": ["appellant", "respondent", "court", "neutral"]},
      "legal_topics": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var (
	metadataSchema = mustCompile("metadata.json", metadataSchemaJSON)
	unitsSchema    = mustCompile("units.json", unitsSchemaJSON)
)

func mustCompile(name, src string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, strings.NewReader(src)); err != nil {
		panic(err)
	}
	return c.MustCompile(name)
}

// ParseGlobalMetadata decodes and validates one metadata response.
// Any shape failure maps to util.ErrMalformedOutput so callers can run
// the single stricter retry.
func ParseGlobalMetadata(raw string) (models.GlobalMetadata, error) {
	raw = stripCodeFence(raw)
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return models.GlobalMetadata{}, fmt.Errorf("%w: %v", util.ErrMalformedOutput, err)
	}
	if err := metadataSchema.Validate(generic); err != nil {
		return models.GlobalMetadata{}, fmt.Errorf("%w: %v", util.ErrMalformedOutput, err)
	}
	var payload struct {
		CaseTitle      string `json:"case_title"`
		CaseNumber     string `json:"case_number"`
		Outcome        string `json:"outcome"`
		WinningParty   string `json:"winning_party"`
		CourtName      string `json:"court_name"`
		City           string `json:"city"`
		YearOfJudgment int    `json:"year_of_judgment"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.GlobalMetadata{}, fmt.Errorf("%w: %v", util.ErrMalformedOutput, err)
	}
	return models.GlobalMetadata{
		CaseTitle:      strings.TrimSpace(payload.CaseTitle),
		CaseNumber:     strings.TrimSpace(payload.CaseNumber),
		Outcome:        CanonicalOutcome(payload.Outcome),
		WinningParty:   strings.TrimSpace(payload.WinningParty),
		CourtName:      strings.TrimSpace(payload.CourtName),
		City:           strings.TrimSpace(payload.City),
		YearOfJudgment: payload.YearOfJudgment,
	}, nil
}

// ParseAtomicUnits decodes and validates one atomization response.
func ParseAtomicUnits(raw string) ([]models.AtomicUnit, error) {
	raw = stripCodeFence(raw)
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedOutput, err)
	}
	if err := unitsSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedOutput, err)
	}
	var units []models.AtomicUnit
	if err := json.Unmarshal([]byte(raw), &units); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedOutput, err)
	}
	return units, nil
}

// CanonicalOutcome maps a free-text disposition onto the closed outcome set.
func CanonicalOutcome(raw string) models.Outcome {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return models.OutcomeUnknown
	case strings.Contains(s, "partly allowed"), strings.Contains(s, "partially allowed"):
		return models.OutcomePartlyAllowed
	case strings.Contains(s, "dismiss"):
		return models.OutcomeDismissed
	case strings.Contains(s, "acquit"):
		return models.OutcomeAcquitted
	case strings.Contains(s, "convict"):
		return models.OutcomeConvicted
	case strings.Contains(s, "allow"):
		return models.OutcomeAllowed
	case strings.Contains(s, "dispose"):
		return models.OutcomeDisposed
	default:
		return models.OutcomeUnknown
	}
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

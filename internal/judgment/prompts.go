package judgment

import "strings"

const MetadataPromptTemplate = `You are a legal metadata extractor for Indian court judgments.
Read the excerpt (the opening and closing of one judgment) and extract case-level metadata.

Output STRICT JSON with exactly this schema:
{
  "case_title": "string",
  "case_number": "string",
  "outcome": "string",
  "winning_party": "string",
  "court_name": "string",
  "city": "string",
  "year_of_judgment": 0
}

Rules:
- Use only what the excerpt states. Unknown string fields become "".
- year_of_judgment is a four digit integer, 0 if unknown.
- outcome is the court's final disposition in the court's own words.
- No commentary, no markdown, JSON only.
`

const AtomizePromptTemplate = `You are a legal analyst decomposing one paragraph of a court judgment
into atomic, self-contained propositions.

Output STRICT JSON: a list (possibly empty) of objects with exactly this schema:
[
  {
    "content": "one self-contained proposition, understandable without the paragraph",
    "supporting_quote": "verbatim span copied from the paragraph that supports the proposition",
    "section_type": "facts|issue|argument|reasoning|holding|order",
    "party_role": "appellant|respondent|court|neutral",
    "legal_topics": ["short topic strings"]
  }
]

Rules:
- supporting_quote MUST be copied verbatim from the paragraph. Never paraphrase it.
- Resolve pronouns in content to the named party, court or entity from the paragraph; never leave a bare "he", "she", "it" or "they".
- Emit nothing that the paragraph does not directly state.
- If the paragraph carries no legal content, return [].
- No commentary, no markdown, JSON only.
`

// StricterSuffix is appended for the single retry after malformed output.
const StricterSuffix = `

Your previous response was not valid JSON. Respond with ONLY the JSON value described above.
No prose before or after. No code fences.`

func BuildMetadataPrompt(excerpt string, strict bool) string {
	p := MetadataPromptTemplate
	if strict {
		p += StricterSuffix
	}
	return p + "\n\nExcerpt:\n" + strings.TrimSpace(excerpt)
}

func BuildAtomizePrompt(paragraph string, strict bool) string {
	p := AtomizePromptTemplate
	if strict {
		p += StricterSuffix
	}
	return p + "\n\nParagraph:\n" + strings.TrimSpace(paragraph)
}

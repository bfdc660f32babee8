package models

import "time"

// DocumentType distinguishes the two ingestion paths.
type DocumentType string

const (
	DocTypeStatute  DocumentType = "statute"
	DocTypeJudgment DocumentType = "judgment"
)

// JobState is the lifecycle state of an ingestion job.
type JobState string

const (
	JobQueued       JobState = "queued"
	JobParsing      JobState = "parsing"
	JobPreviewReady JobState = "preview_ready"
	JobApproved     JobState = "approved"
	JobIndexing     JobState = "indexing"
	JobCompleted    JobState = "completed"
	JobFailed       JobState = "failed"
	JobDeleted      JobState = "deleted"
)

// Terminal reports whether no further transition can leave s.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobDeleted
}

type IngestionJob struct {
	ID            string        `json:"id"`
	FileName      string        `json:"file_name"`
	FilePath      string        `json:"file_path"`
	DocumentType  DocumentType  `json:"document_type,omitempty"`
	State         JobState      `json:"state"`
	Stage         string        `json:"stage,omitempty"`
	ChunkCount    int           `json:"chunk_count"`
	AcceptedUnits int           `json:"accepted_units"`
	RejectedUnits int           `json:"rejected_units"`
	SkippedUnits  int           `json:"skipped_units"`
	Warnings      []UnitWarning `json:"warnings,omitempty"`
	FailReason    string        `json:"fail_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SectionType labels the rhetorical role of a judgment unit.
type SectionType string

const (
	SectionFacts     SectionType = "facts"
	SectionIssue     SectionType = "issue"
	SectionArgument  SectionType = "argument"
	SectionReasoning SectionType = "reasoning"
	SectionHolding   SectionType = "holding"
	SectionOrder     SectionType = "order"
)

type PartyRole string

const (
	RoleAppellant  PartyRole = "appellant"
	RoleRespondent PartyRole = "respondent"
	RoleCourt      PartyRole = "court"
	RoleNeutral    PartyRole = "neutral"
)

// Outcome is the canonical disposition of a judgment.
type Outcome string

const (
	OutcomeDismissed     Outcome = "Dismissed"
	OutcomeAllowed       Outcome = "Allowed"
	OutcomePartlyAllowed Outcome = "PartlyAllowed"
	OutcomeConvicted     Outcome = "Convicted"
	OutcomeAcquitted     Outcome = "Acquitted"
	OutcomeDisposed      Outcome = "Disposed"
	OutcomeUnknown       Outcome = "Unknown"
)

// GlobalMetadata is extracted once per judgment from the head and tail
// of the document and stamped onto every derived chunk.
type GlobalMetadata struct {
	CaseTitle      string  `json:"case_title"`
	CaseNumber     string  `json:"case_number"`
	Outcome        Outcome `json:"outcome"`
	WinningParty   string  `json:"winning_party"`
	CourtName      string  `json:"court_name"`
	City           string  `json:"city"`
	YearOfJudgment int     `json:"year_of_judgment"`
}

// AtomicUnit is one self-contained proposition mined from a judgment
// paragraph, grounded by a verbatim supporting quote.
type AtomicUnit struct {
	Content         string      `json:"content"`
	SupportingQuote string      `json:"supporting_quote"`
	SectionType     SectionType `json:"section_type"`
	PartyRole       PartyRole   `json:"party_role"`
	LegalTopics     []string    `json:"legal_topics"`
}

// ChunkMetadata travels with every indexed chunk; statute and judgment
// chunks populate different subsets.
type ChunkMetadata struct {
	DocumentID   string       `json:"document_id"`
	DocumentType DocumentType `json:"document_type"`

	// Statute fields.
	ActName   string `json:"act_name,omitempty"`
	Chapter   string `json:"chapter,omitempty"`
	SectionID string `json:"section_id,omitempty"`

	// Judgment fields.
	CaseTitle       string      `json:"case_title,omitempty"`
	CaseNumber      string      `json:"case_number,omitempty"`
	Outcome         Outcome     `json:"outcome,omitempty"`
	WinningParty    string      `json:"winning_party,omitempty"`
	CourtName       string      `json:"court_name,omitempty"`
	YearOfJudgment  int         `json:"year_of_judgment,omitempty"`
	SectionType     SectionType `json:"section_type,omitempty"`
	PartyRole       PartyRole   `json:"party_role,omitempty"`
	LegalTopics     []string    `json:"legal_topics,omitempty"`
	SupportingQuote string      `json:"supporting_quote,omitempty"`
	ParagraphIndex  int         `json:"paragraph_index,omitempty"`
}

// Chunk is the unit of indexing and retrieval.
type Chunk struct {
	ChunkID   string        `json:"chunk_id"`
	JobID     string        `json:"job_id"`
	Content   string        `json:"content"`
	EmbedText string        `json:"embed_text"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// UnitWarning records an atomic unit discarded during validation. The
// unit is kept as a reviewable warning, never silently dropped.
type UnitWarning struct {
	ParagraphIndex  int     `json:"paragraph_index"`
	Content         string  `json:"content"`
	SupportingQuote string  `json:"supporting_quote"`
	BestScore       float64 `json:"best_score"`
	Reason          string  `json:"reason"`
}

// SearchResult is one retrieval hit with per-arm and fused scores.
type SearchResult struct {
	ChunkID      string        `json:"chunk_id"`
	Content      string        `json:"content"`
	Metadata     ChunkMetadata `json:"metadata"`
	VectorScore  float64       `json:"vector_score"`
	KeywordScore float64       `json:"keyword_score"`
	FusedScore   float64       `json:"fused_score"`
	RerankScore  float64       `json:"rerank_score,omitempty"`
}

// Refusal is a first-class retrieval outcome, not an error.
type Refusal struct {
	Reason string `json:"reason"`
}

// Citation points at a chunk that was actually shown to the answer model.
type Citation struct {
	Tag        string `json:"tag"`
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	CaseTitle  string `json:"case_title,omitempty"`
	SectionID  string `json:"section_id,omitempty"`
}

// AnswerResult is the outcome of the gated ask pipeline. Exactly one of
// Answer or Refusal is populated.
type AnswerResult struct {
	Answer     string         `json:"answer,omitempty"`
	Refusal    *Refusal       `json:"refusal,omitempty"`
	Citations  []Citation     `json:"citations,omitempty"`
	Sources    []SearchResult `json:"sources,omitempty"`
	Confidence string         `json:"confidence"`
	Degraded   string         `json:"degraded,omitempty"`
	Disclaimer string         `json:"disclaimer,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
}

// PreviewUnit is one row of the review preview served before indexing
// is confirmed.
type PreviewUnit struct {
	ChunkID     string      `json:"chunk_id"`
	Content     string      `json:"content"`
	SectionType SectionType `json:"section_type,omitempty"`
	SectionID   string      `json:"section_id,omitempty"`
	Quote       string      `json:"supporting_quote,omitempty"`
}

type Preview struct {
	JobID         string         `json:"job_id"`
	DocumentType  DocumentType   `json:"document_type"`
	Metadata      GlobalMetadata `json:"metadata,omitempty"`
	Units         []PreviewUnit  `json:"units"`
	Warnings      []UnitWarning  `json:"validation_warnings,omitempty"`
	AcceptedUnits int            `json:"accepted_units"`
	RejectedUnits int            `json:"rejected_units"`
	SkippedUnits  int            `json:"skipped_units"`
}

package activities

import (
	"lexflow/internal/models"
	"lexflow/internal/parser"
)

type ExtractDocumentInput struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

type ExtractDocumentOutput struct {
	Text  string                 `json:"text"`
	Stats parser.ExtractionStats `json:"stats"`
}

type ClassifyDocumentInput struct {
	JobID string `json:"job_id"`
	Text  string `json:"text"`
	// ForceType overrides detection; set by the uploader or by
	// misroute recovery. ForceStrategy pins the statute splitter.
	ForceType     models.DocumentType `json:"force_type,omitempty"`
	ForceStrategy string              `json:"force_strategy,omitempty"`
}

type ClassifyDocumentOutput struct {
	DocumentType models.DocumentType   `json:"document_type"`
	Strategy     parser.StrategyName   `json:"strategy"`
	Stats        parser.DetectionStats `json:"stats"`
}

type ChunkStatuteInput struct {
	JobID    string              `json:"job_id"`
	Text     string              `json:"text"`
	Strategy parser.StrategyName `json:"strategy"`
}

type ChunkStatuteOutput struct {
	ActTitle string         `json:"act_title"`
	Chunks   []models.Chunk `json:"chunks"`
}

type ExtractGlobalMetadataInput struct {
	JobID         string `json:"job_id"`
	Text          string `json:"text"`
	ProviderIndex int    `json:"provider_index"`
}

type ExtractGlobalMetadataOutput struct {
	Metadata models.GlobalMetadata `json:"metadata"`
	// Misroute is set when the text yields no case identity at all,
	// which almost always means a statute reached the judgment path.
	Misroute bool `json:"misroute"`
}

type AtomizeDocumentInput struct {
	JobID         string                `json:"job_id"`
	Stem          string                `json:"stem"`
	Text          string                `json:"text"`
	Metadata      models.GlobalMetadata `json:"metadata"`
	ProviderIndex int                   `json:"provider_index"`
}

type AtomizeDocumentOutput struct {
	Chunks   []models.Chunk       `json:"chunks"`
	Warnings []models.UnitWarning `json:"warnings,omitempty"`
	Accepted int                  `json:"accepted"`
	Rejected int                  `json:"rejected"`
	Skipped  int                  `json:"skipped"`
}

type PersistChunksInput struct {
	JobID  string         `json:"job_id"`
	Chunks []models.Chunk `json:"chunks"`
}

type WritePreviewInput struct {
	JobID   string         `json:"job_id"`
	Preview models.Preview `json:"preview"`
}

type IndexChunksInput struct {
	JobID         string `json:"job_id"`
	ProviderIndex int    `json:"provider_index"`
}

type IndexChunksOutput struct {
	Indexed      int    `json:"indexed"`
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
}

type UpdateJobStateInput struct {
	JobID      string          `json:"job_id"`
	State      models.JobState `json:"state"`
	Stage      string          `json:"stage,omitempty"`
	FailReason string          `json:"fail_reason,omitempty"`
}

type UpdateJobDocumentTypeInput struct {
	JobID        string              `json:"job_id"`
	DocumentType models.DocumentType `json:"document_type"`
}

type CheckJobDeletedInput struct {
	JobID string `json:"job_id"`
}

type CheckJobDeletedOutput struct {
	Deleted bool `json:"deleted"`
}

type DeleteJobDataInput struct {
	JobID string `json:"job_id"`
}

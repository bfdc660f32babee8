package workflows

import "lexflow/internal/models"

type IngestionInput struct {
	JobID           string `json:"job_id"`
	FileName        string `json:"file_name"`
	FilePath        string `json:"file_path"`
	// ForceDocumentType and ForceStrategy override detection when the
	// uploader already knows what the document is.
	ForceDocumentType string `json:"force_document_type,omitempty"`
	ForceStrategy     string `json:"force_strategy,omitempty"`
	LLMProviders      int    `json:"llm_providers"`
	EmbedProviders    int    `json:"embed_providers"`
	CooldownSeconds   int    `json:"cooldown_seconds"`
}

type JobStatusView struct {
	JobID         string               `json:"job_id"`
	State         string               `json:"state"`
	Stage         string               `json:"stage"`
	DocumentType  string               `json:"document_type,omitempty"`
	ChunkCount    int                  `json:"chunk_count"`
	AcceptedUnits int                  `json:"accepted_units"`
	RejectedUnits int                  `json:"rejected_units"`
	SkippedUnits  int                  `json:"skipped_units"`
	Warnings      []models.UnitWarning `json:"validation_warnings,omitempty"`
	FailReason    string               `json:"fail_reason,omitempty"`
}

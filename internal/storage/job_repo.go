package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lexflow/internal/models"
	"lexflow/internal/util"
)

type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) UpsertJob(ctx context.Context, j models.IngestionJob) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO ingestion_jobs (job_id, file_name, file_path, document_type, state, stage, fail_reason)
VALUES ($1, $2, $3, NULLIF($4,''), $5, NULLIF($6,''), NULLIF($7,''))
ON CONFLICT (job_id)
DO UPDATE SET
  file_name = EXCLUDED.file_name,
  file_path = EXCLUDED.file_path,
  document_type = COALESCE(EXCLUDED.document_type, ingestion_jobs.document_type),
  state = EXCLUDED.state,
  stage = EXCLUDED.stage,
  fail_reason = EXCLUDED.fail_reason,
  updated_at = NOW()`,
		j.ID, j.FileName, j.FilePath, string(j.DocumentType), string(j.State), j.Stage, j.FailReason,
	)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}

func (r *JobRepo) UpdateJobState(ctx context.Context, jobID string, state models.JobState, stage, failReason string) error {
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE ingestion_jobs
SET state=$2, stage=NULLIF($3,''), fail_reason=NULLIF($4,''), updated_at=NOW()
WHERE job_id=$1 AND state <> 'deleted'`,
		jobID, string(state), stage, failReason)
	if err != nil {
		return fmt.Errorf("update job state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetJob(ctx, jobID); getErr == nil {
			return util.ErrJobDeleted
		}
		return util.ErrJobNotFound
	}
	return nil
}

func (r *JobRepo) UpdateJobDocumentType(ctx context.Context, jobID string, dt models.DocumentType) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE ingestion_jobs SET document_type=$2, updated_at=NOW() WHERE job_id=$1`, jobID, string(dt))
	if err != nil {
		return fmt.Errorf("update job document type: %w", err)
	}
	return nil
}

func (r *JobRepo) UpdateJobCounts(ctx context.Context, jobID string, chunks, accepted, rejected, skipped int, warnings []models.UnitWarning) error {
	if warnings == nil {
		warnings = []models.UnitWarning{}
	}
	wjson, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshal job warnings: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
UPDATE ingestion_jobs
SET chunk_count=$2, accepted_units=$3, rejected_units=$4, skipped_units=$5, warnings=$6::jsonb, updated_at=NOW()
WHERE job_id=$1`, jobID, chunks, accepted, rejected, skipped, string(wjson))
	if err != nil {
		return fmt.Errorf("update job counts: %w", err)
	}
	return nil
}

func (r *JobRepo) MarkDeleted(ctx context.Context, jobID string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE ingestion_jobs SET state='deleted', updated_at=NOW() WHERE job_id=$1`, jobID)
	if err != nil {
		return fmt.Errorf("mark job deleted: %w", err)
	}
	return nil
}

// IsDeleted is polled at stage boundaries so a delete issued mid-flight
// stops the job before its next stage starts.
func (r *JobRepo) IsDeleted(ctx context.Context, jobID string) (bool, error) {
	var state string
	err := r.db.Pool.QueryRow(ctx, `SELECT state FROM ingestion_jobs WHERE job_id=$1`, jobID).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check job deleted: %w", err)
	}
	return state == string(models.JobDeleted), nil
}

func (r *JobRepo) GetJob(ctx context.Context, jobID string) (models.IngestionJob, error) {
	var j models.IngestionJob
	var docType, stage, failReason string
	var warnings []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT job_id, file_name, file_path, COALESCE(document_type,''), state, COALESCE(stage,''),
       chunk_count, accepted_units, rejected_units, skipped_units, warnings, COALESCE(fail_reason,''),
       created_at, updated_at
FROM ingestion_jobs
WHERE job_id=$1`, jobID).
		Scan(&j.ID, &j.FileName, &j.FilePath, &docType, (*string)(&j.State), &stage,
			&j.ChunkCount, &j.AcceptedUnits, &j.RejectedUnits, &j.SkippedUnits, &warnings, &failReason,
			&j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.IngestionJob{}, util.ErrJobNotFound
	}
	if err != nil {
		return models.IngestionJob{}, fmt.Errorf("get job: %w", err)
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &j.Warnings); err != nil {
			return models.IngestionJob{}, fmt.Errorf("decode job warnings: %w", err)
		}
	}
	j.DocumentType = models.DocumentType(docType)
	j.Stage = stage
	j.FailReason = failReason
	return j, nil
}

func (r *JobRepo) ListJobs(ctx context.Context, limit int) ([]models.IngestionJob, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT job_id, file_name, file_path, COALESCE(document_type,''), state, COALESCE(stage,''),
       chunk_count, accepted_units, rejected_units, skipped_units, warnings, COALESCE(fail_reason,''),
       created_at, updated_at
FROM ingestion_jobs
WHERE state <> 'deleted'
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	out := make([]models.IngestionJob, 0)
	for rows.Next() {
		var j models.IngestionJob
		var docType, stage, failReason string
		var warnings []byte
		if err := rows.Scan(&j.ID, &j.FileName, &j.FilePath, &docType, (*string)(&j.State), &stage,
			&j.ChunkCount, &j.AcceptedUnits, &j.RejectedUnits, &j.SkippedUnits, &warnings, &failReason,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if len(warnings) > 0 {
			if err := json.Unmarshal(warnings, &j.Warnings); err != nil {
				return nil, fmt.Errorf("decode job warnings: %w", err)
			}
		}
		j.DocumentType = models.DocumentType(docType)
		j.Stage = stage
		j.FailReason = failReason
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

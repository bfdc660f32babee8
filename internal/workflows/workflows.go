package workflows

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lexflow/internal/activities"
	"lexflow/internal/models"
	"lexflow/internal/providers"
	"lexflow/internal/util"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetJobStatus = "GetJobStatus"
	SignalConfirm     = "confirm"
	SignalDelete      = "delete"
)

type providerState struct {
	disabledUntil map[int]time.Time
	retries       map[string]int
}

func newProviderState() providerState {
	return providerState{disabledUntil: map[int]time.Time{}, retries: map[string]int{}}
}

// IngestionWorkflow drives one document through the job lifecycle:
// queued -> parsing -> preview_ready -> (confirm) -> indexing ->
// completed. Deletion is observed at stage boundaries; a stage that is
// already running finishes, the next one never starts.
func IngestionWorkflow(ctx workflow.Context, input IngestionInput) (string, error) {
	status := JobStatusView{JobID: input.JobID, State: string(models.JobQueued)}
	if err := workflow.SetQueryHandler(ctx, QueryGetJobStatus, func() (JobStatusView, error) {
		return status, nil
	}); err != nil {
		return "", err
	}
	confirmCh := workflow.GetSignalChannel(ctx, SignalConfirm)
	deleteCh := workflow.GetSignalChannel(ctx, SignalDelete)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
			NonRetryableErrorTypes: []string{
				"ExtractionError",
				"MalformedOutput",
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	llmProviders := defaultCount(input.LLMProviders)
	embedProviders := defaultCount(input.EmbedProviders)
	cooldown := durationOrDefault(input.CooldownSeconds, 900)
	llmState := newProviderState()
	embedState := newProviderState()

	setState := func(state models.JobState, stage string) error {
		status.State = string(state)
		status.Stage = stage
		return workflow.ExecuteActivity(ctx, "UpdateJobStateActivity", activities.UpdateJobStateInput{
			JobID: input.JobID, State: state, Stage: stage,
		}).Get(ctx, nil)
	}
	fail := func(stage, reason string) (string, error) {
		status.State = string(models.JobFailed)
		status.Stage = stage
		status.FailReason = reason
		_ = workflow.ExecuteActivity(ctx, "UpdateJobStateActivity", activities.UpdateJobStateInput{
			JobID: input.JobID, State: models.JobFailed, Stage: stage, FailReason: reason,
		}).Get(ctx, nil)
		return string(models.JobFailed), nil
	}
	deletedAtBoundary := func() bool {
		var out activities.CheckJobDeletedOutput
		if err := workflow.ExecuteActivity(ctx, "CheckJobDeletedActivity", activities.CheckJobDeletedInput{JobID: input.JobID}).Get(ctx, &out); err != nil {
			return false
		}
		return out.Deleted
	}
	cleanupDeleted := func() (string, error) {
		status.State = string(models.JobDeleted)
		_ = workflow.ExecuteActivity(ctx, "DeleteJobDataActivity", activities.DeleteJobDataInput{JobID: input.JobID}).Get(ctx, nil)
		return string(models.JobDeleted), nil
	}

	// Parsing.
	if err := setState(models.JobParsing, "extract"); err != nil {
		if errors.Is(err, util.ErrJobDeleted) || strings.Contains(err.Error(), util.ErrJobDeleted.Error()) {
			return cleanupDeleted()
		}
		return "", err
	}
	var extractOut activities.ExtractDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractDocumentActivity", activities.ExtractDocumentInput{
		JobID: input.JobID, FilePath: input.FilePath,
	}).Get(ctx, &extractOut); err != nil {
		if isNoTextError(err) {
			return fail("extract", "no extractable text found in PDF")
		}
		return fail("extract", err.Error())
	}
	if deletedAtBoundary() {
		return cleanupDeleted()
	}

	status.Stage = "classify"
	var classifyOut activities.ClassifyDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ClassifyDocumentActivity", activities.ClassifyDocumentInput{
		JobID:         input.JobID,
		Text:          extractOut.Text,
		ForceType:     models.DocumentType(input.ForceDocumentType),
		ForceStrategy: input.ForceStrategy,
	}).Get(ctx, &classifyOut); err != nil {
		return fail("classify", err.Error())
	}
	_ = workflow.ExecuteActivity(ctx, "UpdateJobDocumentTypeActivity", activities.UpdateJobDocumentTypeInput{
		JobID: input.JobID, DocumentType: classifyOut.DocumentType,
	}).Get(ctx, nil)
	status.DocumentType = string(classifyOut.DocumentType)

	var (
		chunks   []models.Chunk
		preview  models.Preview
		rerouted bool
	)
	docType := classifyOut.DocumentType

parse:
	switch docType {
	case models.DocTypeStatute:
		status.Stage = "chunk"
		var chunkOut activities.ChunkStatuteOutput
		if err := workflow.ExecuteActivity(ctx, "ChunkStatuteActivity", activities.ChunkStatuteInput{
			JobID: input.JobID, Text: extractOut.Text, Strategy: classifyOut.Strategy,
		}).Get(ctx, &chunkOut); err != nil {
			return fail("chunk", err.Error())
		}
		chunks = chunkOut.Chunks
		preview = activities.BuildPreview(input.JobID, docType, models.GlobalMetadata{}, chunks, nil, 0, 0)

	case models.DocTypeJudgment:
		status.Stage = "metadata"
		metaOut, err := callMetadataWithFailover(ctx, &llmState, llmProviders, cooldown, activities.ExtractGlobalMetadataInput{
			JobID: input.JobID, Text: extractOut.Text,
		})
		if err != nil {
			return fail("metadata", err.Error())
		}
		if metaOut.Misroute && !rerouted {
			// A statute slipped past the classifier. Route it once to
			// the statute path; a second miss fails the job.
			rerouted = true
			docType = models.DocTypeStatute
			status.DocumentType = string(docType)
			_ = workflow.ExecuteActivity(ctx, "UpdateJobDocumentTypeActivity", activities.UpdateJobDocumentTypeInput{
				JobID: input.JobID, DocumentType: docType,
			}).Get(ctx, nil)
			goto parse
		}
		if deletedAtBoundary() {
			return cleanupDeleted()
		}

		status.Stage = "atomize"
		atomOut, err := callAtomizeWithFailover(ctx, &llmState, llmProviders, cooldown, activities.AtomizeDocumentInput{
			JobID: input.JobID, Stem: stemOf(input.FileName), Text: extractOut.Text, Metadata: metaOut.Metadata,
		})
		if err != nil {
			return fail("atomize", err.Error())
		}
		chunks = atomOut.Chunks
		status.AcceptedUnits = atomOut.Accepted
		status.RejectedUnits = atomOut.Rejected
		status.SkippedUnits = atomOut.Skipped
		status.Warnings = atomOut.Warnings
		preview = activities.BuildPreview(input.JobID, docType, metaOut.Metadata, chunks, atomOut.Warnings, atomOut.Accepted, atomOut.Skipped)
	}
	status.ChunkCount = len(chunks)
	if deletedAtBoundary() {
		return cleanupDeleted()
	}

	status.Stage = "persist"
	if err := workflow.ExecuteActivity(ctx, "PersistChunksActivity", activities.PersistChunksInput{
		JobID: input.JobID, Chunks: chunks,
	}).Get(ctx, nil); err != nil {
		return fail("persist", err.Error())
	}
	if err := workflow.ExecuteActivity(ctx, "WritePreviewActivity", activities.WritePreviewInput{
		JobID: input.JobID, Preview: preview,
	}).Get(ctx, nil); err != nil {
		return fail("preview", err.Error())
	}
	if err := setState(models.JobPreviewReady, "await_confirm"); err != nil {
		return cleanupDeleted()
	}

	// Wait for human review. Extra confirm signals are harmless: the
	// workflow is already past the wait by the time they arrive.
	confirmed, deleted := false, false
	sel := workflow.NewSelector(ctx)
	sel.AddReceive(confirmCh, func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, nil)
		confirmed = true
	})
	sel.AddReceive(deleteCh, func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, nil)
		deleted = true
	})
	for !confirmed && !deleted {
		sel.Select(ctx)
	}
	if deleted {
		return cleanupDeleted()
	}

	if err := setState(models.JobApproved, "approved"); err != nil {
		return cleanupDeleted()
	}
	if deletedAtBoundary() {
		return cleanupDeleted()
	}

	// Indexing.
	if err := setState(models.JobIndexing, "index"); err != nil {
		return cleanupDeleted()
	}
	indexOut, err := callIndexWithFailover(ctx, &embedState, embedProviders, cooldown, activities.IndexChunksInput{
		JobID: input.JobID,
	})
	if err != nil {
		return fail("index", err.Error())
	}
	workflow.GetLogger(ctx).Info("indexed job", "job_id", input.JobID, "chunks", indexOut.Indexed, "provider", indexOut.ProviderName)

	if deletedAtBoundary() {
		return cleanupDeleted()
	}
	if err := setState(models.JobCompleted, "done"); err != nil {
		return cleanupDeleted()
	}
	return string(models.JobCompleted), nil
}

func callMetadataWithFailover(ctx workflow.Context, state *providerState, providerCount int, cooldown time.Duration, input activities.ExtractGlobalMetadataInput) (activities.ExtractGlobalMetadataOutput, error) {
	var lastErr error
	for attempt := 0; attempt < providerCount*4; attempt++ {
		idx := attempt % providerCount
		if isProviderDisabled(ctx, state, idx) {
			continue
		}
		input.ProviderIndex = idx
		var out activities.ExtractGlobalMetadataOutput
		err := workflow.ExecuteActivity(ctx, "ExtractGlobalMetadataActivity", input).Get(ctx, &out)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !handleProviderError(ctx, state, idx, cooldown, "metadata", err) {
			attempt--
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all llm providers exhausted")
	}
	return activities.ExtractGlobalMetadataOutput{}, lastErr
}

func callAtomizeWithFailover(ctx workflow.Context, state *providerState, providerCount int, cooldown time.Duration, input activities.AtomizeDocumentInput) (activities.AtomizeDocumentOutput, error) {
	var lastErr error
	for attempt := 0; attempt < providerCount*4; attempt++ {
		idx := attempt % providerCount
		if isProviderDisabled(ctx, state, idx) {
			continue
		}
		input.ProviderIndex = idx
		var out activities.AtomizeDocumentOutput
		err := workflow.ExecuteActivity(ctx, "AtomizeDocumentActivity", input).Get(ctx, &out)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !handleProviderError(ctx, state, idx, cooldown, "atomize", err) {
			attempt--
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all llm providers exhausted")
	}
	return activities.AtomizeDocumentOutput{}, lastErr
}

func callIndexWithFailover(ctx workflow.Context, state *providerState, providerCount int, cooldown time.Duration, input activities.IndexChunksInput) (activities.IndexChunksOutput, error) {
	var lastErr error
	for attempt := 0; attempt < providerCount*4; attempt++ {
		idx := attempt % providerCount
		if isProviderDisabled(ctx, state, idx) {
			continue
		}
		input.ProviderIndex = idx
		var out activities.IndexChunksOutput
		err := workflow.ExecuteActivity(ctx, "IndexChunksActivity", input).Get(ctx, &out)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !handleProviderError(ctx, state, idx, cooldown, "index", err) {
			attempt--
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all embed providers exhausted")
	}
	return activities.IndexChunksOutput{}, lastErr
}

// handleProviderError applies the per-class policy. It returns false
// when the same provider should be retried without consuming an
// attempt (short backoff classes), true otherwise.
func handleProviderError(ctx workflow.Context, state *providerState, idx int, cooldown time.Duration, op string, err error) bool {
	key := fmt.Sprintf("%s-%d", op, idx)
	state.retries[key]++
	switch providers.ClassifyError(err) {
	case providers.ErrorQuota:
		disableProviderUntil(ctx, state, idx, cooldown)
		return true
	case providers.ErrorRate:
		if state.retries[key] <= 2 {
			workflow.Sleep(ctx, time.Duration(1<<(state.retries[key]-1))*time.Second)
			return false
		}
		disableProviderUntil(ctx, state, idx, 2*time.Minute)
		return true
	case providers.ErrorTransient:
		if state.retries[key] <= 2 {
			workflow.Sleep(ctx, time.Duration(state.retries[key])*time.Second)
			return false
		}
		return true
	default:
		disableProviderUntil(ctx, state, idx, time.Minute)
		return true
	}
}

func isProviderDisabled(ctx workflow.Context, state *providerState, idx int) bool {
	until, ok := state.disabledUntil[idx]
	if !ok {
		return false
	}
	return workflow.Now(ctx).Before(until)
}

func disableProviderUntil(ctx workflow.Context, state *providerState, idx int, d time.Duration) {
	state.disabledUntil[idx] = workflow.Now(ctx).Add(d)
}

func isNoTextError(err error) bool {
	return err != nil && strings.Contains(err.Error(), util.ErrNoExtractableText.Error())
}

func stemOf(fileName string) string {
	base := fileName
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func durationOrDefault(seconds int, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

func defaultCount(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

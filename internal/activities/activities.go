package activities

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"lexflow/internal/config"
	"lexflow/internal/judgment"
	"lexflow/internal/models"
	"lexflow/internal/parser"
	"lexflow/internal/providers"
	"lexflow/internal/storage"
	"lexflow/internal/util"
	"lexflow/internal/vector"
)

type Activities struct {
	cfg       config.Config
	jobRepo   *storage.JobRepo
	chunkRepo *storage.ChunkRepo
	providers *providers.Manager
	extractor *parser.Extractor
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:       cfg,
		jobRepo:   storage.NewJobRepo(db),
		chunkRepo: storage.NewChunkRepo(db),
		providers: pm,
		extractor: &parser.Extractor{},
	}, nil
}

func (a *Activities) ExtractDocumentActivity(ctx context.Context, in ExtractDocumentInput) (ExtractDocumentOutput, error) {
	pages, stats, err := a.extractor.ExtractPages(ctx, in.FilePath)
	if err != nil {
		return ExtractDocumentOutput{}, err
	}
	text := parser.FullText(pages)
	if strings.TrimSpace(text) == "" {
		return ExtractDocumentOutput{}, util.ErrNoExtractableText
	}
	artifact := filepath.Join(a.cfg.ArtifactDir, in.JobID, "text.txt")
	if err := util.WriteTextAtomic(artifact, text); err != nil {
		return ExtractDocumentOutput{}, err
	}
	log.Printf("extracted job %s: %d pages, %d empty, %d fallback", in.JobID, stats.TotalPages, stats.EmptyPages, stats.FallbackPages)
	return ExtractDocumentOutput{Text: text, Stats: stats}, nil
}

func (a *Activities) ClassifyDocumentActivity(ctx context.Context, in ClassifyDocumentInput) (ClassifyDocumentOutput, error) {
	_ = ctx
	docType, stats := parser.Classify(in.Text)
	if in.ForceType != "" {
		docType = in.ForceType
	}
	strategy := parser.SelectStrategy(stats)
	if in.ForceStrategy != "" {
		strategy = parser.StrategyName(in.ForceStrategy)
	}
	return ClassifyDocumentOutput{
		DocumentType: docType,
		Strategy:     strategy,
		Stats:        stats,
	}, nil
}

func (a *Activities) ChunkStatuteActivity(ctx context.Context, in ChunkStatuteInput) (ChunkStatuteOutput, error) {
	_ = ctx
	title, abbrev := parser.DetectActName(in.Text)
	sections := parser.StrategyFor(in.Strategy).Split(in.Text)
	if len(sections) == 0 {
		return ChunkStatuteOutput{}, fmt.Errorf("strategy %s produced no sections", in.Strategy)
	}
	return ChunkStatuteOutput{
		ActTitle: title,
		Chunks:   parser.BuildStatuteChunks(in.JobID, title, abbrev, sections),
	}, nil
}

func (a *Activities) ExtractGlobalMetadataActivity(ctx context.Context, in ExtractGlobalMetadataInput) (ExtractGlobalMetadataOutput, error) {
	atomizer := a.newAtomizer(in.ProviderIndex, "metadata")
	meta, err := atomizer.ExtractGlobalMetadata(ctx, in.Text)
	if err != nil {
		return ExtractGlobalMetadataOutput{}, err
	}
	misroute := meta.CaseTitle == "" && meta.WinningParty == "" && meta.CaseNumber == ""
	return ExtractGlobalMetadataOutput{Metadata: meta, Misroute: misroute}, nil
}

func (a *Activities) AtomizeDocumentActivity(ctx context.Context, in AtomizeDocumentInput) (AtomizeDocumentOutput, error) {
	atomizer := a.newAtomizer(in.ProviderIndex, "atomize")
	paragraphs := judgment.SplitParagraphs(in.Text)

	concurrency := a.cfg.AtomizerConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var (
		mu      sync.Mutex
		results []judgment.ParagraphResult
		skipped int
	)
	for i, para := range paragraphs {
		if atomizer.SkipParagraph(para) {
			skipped++
			continue
		}
		i, para := i, para
		g.Go(func() error {
			res := atomizer.AtomizeParagraph(gctx, i, para)
			if res.Err != nil {
				// A failed paragraph loses its units but never sinks
				// the document.
				log.Printf("atomize job %s paragraph %d: %v", in.JobID, i, res.Err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AtomizeDocumentOutput{}, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	accepted := 0
	var warnings []models.UnitWarning
	for _, r := range results {
		accepted += len(r.Accepted)
		warnings = append(warnings, r.Rejected...)
	}
	chunks := judgment.BuildJudgmentChunks(in.JobID, in.Stem, in.Metadata, results)
	return AtomizeDocumentOutput{Chunks: chunks, Warnings: warnings, Accepted: accepted, Rejected: len(warnings), Skipped: skipped}, nil
}

func (a *Activities) PersistChunksActivity(ctx context.Context, in PersistChunksInput) error {
	records := make([]storage.ChunkRecord, 0, len(in.Chunks))
	for _, c := range in.Chunks {
		records = append(records, storage.ChunkRecord{
			ChunkID:   c.ChunkID,
			JobID:     in.JobID,
			Content:   util.SanitizeText(c.Content),
			EmbedText: util.SanitizeText(c.EmbedText),
			Metadata:  c.Metadata,
		})
	}
	return a.chunkRepo.UpsertChunks(ctx, records)
}

func (a *Activities) WritePreviewActivity(ctx context.Context, in WritePreviewInput) error {
	path := filepath.Join(a.cfg.ArtifactDir, in.JobID, "preview.json")
	if err := util.WriteJSONAtomic(path, in.Preview); err != nil {
		return err
	}
	return a.jobRepo.UpdateJobCounts(ctx, in.JobID,
		len(in.Preview.Units), in.Preview.AcceptedUnits, in.Preview.RejectedUnits, in.Preview.SkippedUnits,
		in.Preview.Warnings)
}

// IndexChunksActivity embeds every chunk of the job in batches and
// upserts the vectors. Chunk ids are stable, so rerunning after a crash
// or a re-ingest overwrites instead of duplicating.
func (a *Activities) IndexChunksActivity(ctx context.Context, in IndexChunksInput) (IndexChunksOutput, error) {
	chunks, err := a.chunkRepo.ListChunksByJob(ctx, in.JobID)
	if err != nil {
		return IndexChunksOutput{}, err
	}
	provider, ref := a.providers.EmbedProviderByIndex(in.ProviderIndex)

	batchSize := a.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	indexed := 0
	var info providers.ProviderInfo
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		inputs := make([]string, len(batch))
		for i, c := range batch {
			inputs[i] = c.EmbedText
		}
		var vectors [][]float32
		err := providers.WithBackoff(ctx, func() error {
			var embedErr error
			vectors, info, embedErr = provider.Embed(ctx, providers.EmbedRequest{
				Operation: "index",
				Inputs:    inputs,
				Dimension: a.cfg.EmbedDim,
			})
			return embedErr
		})
		if err != nil {
			return IndexChunksOutput{}, fmt.Errorf("embed batch via %s: %w", ref.Raw, err)
		}
		if len(vectors) != len(batch) {
			return IndexChunksOutput{}, fmt.Errorf("embed batch via %s: got %d vectors for %d inputs", ref.Raw, len(vectors), len(batch))
		}
		records := make([]storage.ChunkRecord, len(batch))
		for i, c := range batch {
			lit := vector.ToLiteral(vectors[i])
			records[i] = storage.ChunkRecord{
				ChunkID:         c.ChunkID,
				JobID:           c.JobID,
				Content:         c.Content,
				EmbedText:       c.EmbedText,
				Metadata:        c.Metadata,
				EmbeddingVector: &lit,
			}
		}
		if err := a.chunkRepo.UpsertChunks(ctx, records); err != nil {
			return IndexChunksOutput{}, err
		}
		indexed += len(batch)
	}
	return IndexChunksOutput{Indexed: indexed, ProviderName: info.Name, Model: info.Model}, nil
}

func (a *Activities) UpdateJobStateActivity(ctx context.Context, in UpdateJobStateInput) error {
	return a.jobRepo.UpdateJobState(ctx, in.JobID, in.State, in.Stage, in.FailReason)
}

func (a *Activities) UpdateJobDocumentTypeActivity(ctx context.Context, in UpdateJobDocumentTypeInput) error {
	return a.jobRepo.UpdateJobDocumentType(ctx, in.JobID, in.DocumentType)
}

func (a *Activities) CheckJobDeletedActivity(ctx context.Context, in CheckJobDeletedInput) (CheckJobDeletedOutput, error) {
	deleted, err := a.jobRepo.IsDeleted(ctx, in.JobID)
	if err != nil {
		return CheckJobDeletedOutput{}, err
	}
	return CheckJobDeletedOutput{Deleted: deleted}, nil
}

func (a *Activities) DeleteJobDataActivity(ctx context.Context, in DeleteJobDataInput) error {
	if err := a.chunkRepo.DeleteChunksByJob(ctx, in.JobID); err != nil {
		return err
	}
	return a.jobRepo.MarkDeleted(ctx, in.JobID)
}

// newAtomizer wires a judgment atomizer to one configured LLM provider
// with rate-limit backoff.
func (a *Activities) newAtomizer(providerIndex int, operation string) *judgment.Atomizer {
	provider, ref := a.providers.LLMProviderByIndex(providerIndex)
	at := judgment.NewAtomizer(&llmAdapter{provider: provider, ref: ref, operation: operation})
	at.MetadataWindow = a.cfg.MetadataWindow
	at.MinParagraphLen = a.cfg.MinParagraphLen
	at.QuoteThreshold = a.cfg.QuoteThreshold
	return at
}

type llmAdapter struct {
	provider  providers.LLMProvider
	ref       providers.ProviderRef
	operation string
}

func (l *llmAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	var text string
	err := providers.WithBackoff(ctx, func() error {
		resp, _, genErr := l.provider.Generate(ctx, providers.GenerateRequest{
			Operation: l.operation,
			Prompt:    prompt,
		})
		if genErr != nil {
			return genErr
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate via %s: %w", l.ref.Raw, err)
	}
	return text, nil
}

// BuildPreview assembles the review payload from parsed chunks.
// Validation warnings ride along so the reviewer sees what was
// discarded and why before confirming.
func BuildPreview(jobID string, docType models.DocumentType, meta models.GlobalMetadata, chunks []models.Chunk, warnings []models.UnitWarning, accepted, skipped int) models.Preview {
	units := make([]models.PreviewUnit, 0, len(chunks))
	for _, c := range chunks {
		units = append(units, models.PreviewUnit{
			ChunkID:     c.ChunkID,
			Content:     c.Content,
			SectionType: c.Metadata.SectionType,
			SectionID:   c.Metadata.SectionID,
			Quote:       c.Metadata.SupportingQuote,
		})
	}
	return models.Preview{
		JobID:         jobID,
		DocumentType:  docType,
		Metadata:      meta,
		Units:         units,
		Warnings:      warnings,
		AcceptedUnits: accepted,
		RejectedUnits: len(warnings),
		SkippedUnits:  skipped,
	}
}

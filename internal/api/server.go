package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lexflow/internal/config"
	"lexflow/internal/models"
	"lexflow/internal/parser"
	"lexflow/internal/providers"
	"lexflow/internal/retrieval"
	"lexflow/internal/storage"
	"lexflow/internal/util"
	"lexflow/internal/vector"
	"lexflow/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg         config.Config
	db          *storage.DB
	jobRepo     *storage.JobRepo
	sessionRepo *storage.SessionRepo
	hybrid      *retrieval.Hybrid
	gate        *retrieval.Gate
	providers   *providers.Manager
	temporal    tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress, Namespace: cfg.TemporalNamespace})
	if err != nil {
		panic(err)
	}

	hybrid := retrieval.NewHybrid(
		&queryEmbedder{providers: pm, dim: cfg.EmbedDim},
		vector.NewSearcher(db.Pool),
		vector.NewKeywordSearcher(db.Pool),
	)
	hybrid.VectorWeight = cfg.VectorWeight
	hybrid.KeywordWeight = cfg.KeywordWeight
	hybrid.K = cfg.RetrievalK
	hybrid.TopN = cfg.FusedTopN

	gate := retrieval.NewGate(pm.Reranker())
	gate.RelevanceFloor = cfg.RelevanceFloor
	gate.ConfidenceFloor = cfg.ConfidenceFloor
	gate.RerankTopK = cfg.RerankTopK

	return &Server{
		cfg:         cfg,
		db:          db,
		jobRepo:     storage.NewJobRepo(db),
		sessionRepo: storage.NewSessionRepo(db),
		hybrid:      hybrid,
		gate:        gate,
		providers:   pm,
		temporal:    tc,
	}
}

// queryEmbedder walks embed providers in preferred order until one
// returns a vector for the query.
type queryEmbedder struct {
	providers *providers.Manager
	dim       int
}

func (e *queryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for _, idx := range e.providers.PreferredEmbedOrder() {
		p, _ := e.providers.EmbedProviderByIndex(idx)
		vecs, _, err := p.Embed(ctx, providers.EmbedRequest{
			Operation: "query_embed",
			Inputs:    []string{text},
			Dimension: e.dim,
		})
		if err == nil && len(vecs) == 1 {
			return vecs[0], nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no embedding provider produced a vector")
	}
	return nil, lastErr
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/judgments/upload", s.handleUpload)
	mux.HandleFunc("/judgments/upload-batch", s.handleUpload)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobScoped)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/ask", s.handleAsk)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	// Optional overrides: a caller that knows the document type wins
	// over detection.
	forceType := strings.TrimSpace(r.FormValue("document_type"))
	switch forceType {
	case "", string(models.DocTypeStatute), string(models.DocTypeJudgment):
	default:
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unknown document_type %q", forceType))
		return
	}
	forceStrategy := strings.TrimSpace(r.FormValue("strategy"))
	switch forceStrategy {
	case "", string(parser.StrategyNarrative), string(parser.StrategyStrict), string(parser.StrategySchedule):
	default:
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unknown strategy %q", forceStrategy))
		return
	}

	if err := util.EnsureDir(s.cfg.UploadDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	type uploadResult struct {
		JobID      string `json:"job_id"`
		FileName   string `json:"file_name"`
		WorkflowID string `json:"workflow_id"`
	}
	out := make([]uploadResult, 0, len(files))

	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			continue
		}
		jobID := uuid.NewString()
		savedPath, err := saveUploadedFile(s.cfg.UploadDir, jobID, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		if err := s.jobRepo.UpsertJob(r.Context(), models.IngestionJob{
			ID:       jobID,
			FileName: filepath.Base(fh.Filename),
			FilePath: savedPath,
			State:    models.JobQueued,
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
			ID:                    workflowID(jobID),
			TaskQueue:             s.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		}, workflows.IngestionWorkflow, workflows.IngestionInput{
			JobID:             jobID,
			FileName:          filepath.Base(fh.Filename),
			FilePath:          savedPath,
			ForceDocumentType: forceType,
			ForceStrategy:     forceStrategy,
			LLMProviders:      s.providers.LLMCount(),
			EmbedProviders:    s.providers.EmbedCount(),
			CooldownSeconds:   s.cfg.ProviderCooldownSecs,
		})
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		out = append(out, uploadResult{JobID: jobID, FileName: filepath.Base(fh.Filename), WorkflowID: we.GetID()})
	}
	if len(out) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": out})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	jobs, err := s.jobRepo.ListJobs(r.Context(), 0)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleJobScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	jobID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetJob(w, r, jobID)
		case http.MethodDelete:
			s.handleDeleteJob(w, r, jobID)
		default:
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		}
		return
	}
	if len(parts) == 2 && parts[1] == "preview" {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handlePreview(w, r, jobID)
		return
	}
	if len(parts) == 2 && parts[1] == "confirm" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handleConfirm(w, r, jobID)
		return
	}
	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	// Prefer the live workflow view; fall back to the DB row once the
	// workflow has closed.
	var view workflows.JobStatusView
	resp, err := s.temporal.QueryWorkflow(r.Context(), workflowID(jobID), "", workflows.QueryGetJobStatus)
	if err == nil {
		if err := resp.Get(&view); err == nil {
			writeJSON(w, http.StatusOK, view)
			return
		}
	}
	job, err := s.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, util.ErrJobNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("job not found"))
		return
	}
	if job.State == models.JobQueued || job.State == models.JobParsing {
		writeErr(w, http.StatusConflict, fmt.Errorf("preview not ready"))
		return
	}
	var preview models.Preview
	path := filepath.Join(s.cfg.ArtifactDir, jobID, "preview.json")
	if err := util.ReadJSONFile(path, &preview); err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("preview not found"))
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, util.ErrJobNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	switch job.State {
	case models.JobApproved, models.JobIndexing, models.JobCompleted:
		// Confirm is idempotent: repeats after approval are no-ops.
		writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "state": job.State})
		return
	case models.JobPreviewReady:
	default:
		writeErr(w, http.StatusConflict, fmt.Errorf("%w: job is %s, not awaiting confirmation", util.ErrInvalidTransition, job.State))
		return
	}
	if err := s.temporal.SignalWorkflow(r.Context(), workflowID(jobID), "", workflows.SignalConfirm, nil); err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID, "state": models.JobApproved})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, util.ErrJobNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if job.State == models.JobDeleted {
		writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "state": models.JobDeleted})
		return
	}
	if err := s.jobRepo.MarkDeleted(r.Context(), jobID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	// Nudge a workflow parked at the review gate; closed workflows just
	// reject the signal and the stage-boundary check handles the rest.
	_ = s.temporal.SignalWorkflow(r.Context(), workflowID(jobID), "", workflows.SignalDelete, nil)
	writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "state": models.JobDeleted})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Query        string   `json:"query"`
		DocumentType string   `json:"document_type"`
		JobIDs       []string `json:"job_ids"`
		TopK         int      `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}
	res, err := s.hybrid.Search(r.Context(), req.Query, vector.SearchFilters{
		DocumentType: models.DocumentType(req.DocumentType),
		JobIDs:       req.JobIDs,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	results := res.Results
	// top_k narrows within the fused window; it never widens past the
	// configured top-N.
	if req.TopK > 0 && req.TopK < len(results) {
		results = results[:req.TopK]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":  results,
		"degraded": res.Degraded,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question     string `json:"question"`
		SessionID    string `json:"session_id"`
		DocumentType string `json:"document_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := s.sessionRepo.EnsureSession(r.Context(), sessionID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	hyb, err := s.hybrid.Search(r.Context(), req.Question, vector.SearchFilters{DocumentType: models.DocumentType(req.DocumentType)})
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}

	gated := s.gate.Evaluate(r.Context(), req.Question, hyb.Results)
	degraded := hyb.Degraded
	if gated.Degraded != "" {
		degraded = gated.Degraded
	}

	if gated.Refusal != nil {
		result := models.AnswerResult{
			Refusal:   gated.Refusal,
			Degraded:  degraded,
			SessionID: sessionID,
		}
		_ = s.sessionRepo.LogExchange(r.Context(), sessionID, req.Question, gated.Refusal.Reason, true)
		writeJSON(w, http.StatusOK, result)
		return
	}

	prior, _ := s.sessionRepo.RecentQuestions(r.Context(), sessionID, 0)
	answer, err := s.generateAnswer(r.Context(), req.Question, prior, gated.Selected)
	if err != nil {
		writeErr(w, http.StatusBadGateway, fmt.Errorf("generation failed: %w", err))
		return
	}

	result := models.AnswerResult{
		Answer:     answer,
		Citations:  buildCitations(gated.Selected),
		Sources:    gated.Selected,
		Confidence: gated.Confidence,
		Degraded:   degraded,
		Disclaimer: gated.Disclaimer,
		SessionID:  sessionID,
	}
	_ = s.sessionRepo.LogExchange(r.Context(), sessionID, req.Question, answer, false)
	writeJSON(w, http.StatusOK, result)
}

// generateAnswer prompts the first healthy LLM provider with the gated
// chunks as the only permitted evidence. Each snippet carries its
// metadata header so the model can attribute claims to a case or
// section without guessing.
func (s *Server) generateAnswer(ctx context.Context, question string, priorQuestions []string, selected []models.SearchResult) (string, error) {
	snippets := make([]string, 0, len(selected))
	for i, r := range selected {
		snippets = append(snippets, fmt.Sprintf("%s | %s\n%s", citationTag(i), snippetHeader(r.Metadata), r.Content))
	}

	var b strings.Builder
	b.WriteString("Question: " + question + "\n\n")
	if len(priorQuestions) > 0 {
		b.WriteString("Earlier questions in this session, for context only:\n")
		for _, q := range priorQuestions {
			b.WriteString("- " + q + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Answer the question using ONLY the provided passages.\n" +
		"Do NOT use outside legal knowledge.\n" +
		"If the passages do not fully answer the question, say what is missing.\n\n" +
		"Citation rules:\n" +
		"- Cite passages as [C1], [C2], etc. after each factual claim.\n" +
		"- Never cite a passage that was not provided.\n\n" +
		"Passages:\n")

	resp, _, err := s.generate(ctx, "ask", b.String(), snippets)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(resp.Text)
	if answer == "" {
		return "", fmt.Errorf("empty answer from provider")
	}
	return answer, nil
}

func (s *Server) generate(ctx context.Context, op, prompt string, snippets []string) (providers.GenerateResponse, providers.ProviderInfo, error) {
	var (
		resp providers.GenerateResponse
		info providers.ProviderInfo
		err  error
	)
	for _, idx := range s.providers.PreferredLLMOrder() {
		p, ref := s.providers.LLMProviderByIndex(idx)
		resp, info, err = p.Generate(ctx, providers.GenerateRequest{
			Operation: op,
			Prompt:    prompt,
			Context:   snippets,
		})
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			info.Name = ref.Name
			return resp, info, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("all llm providers returned empty output")
	}
	return resp, info, err
}

func buildCitations(selected []models.SearchResult) []models.Citation {
	out := make([]models.Citation, 0, len(selected))
	for i, r := range selected {
		out = append(out, models.Citation{
			Tag:        citationTag(i),
			ChunkID:    r.ChunkID,
			DocumentID: r.Metadata.DocumentID,
			CaseTitle:  r.Metadata.CaseTitle,
			SectionID:  r.Metadata.SectionID,
		})
	}
	return out
}

func citationTag(i int) string {
	return fmt.Sprintf("[C%d]", i+1)
}

func snippetHeader(m models.ChunkMetadata) string {
	if m.DocumentType == models.DocTypeStatute {
		parts := []string{m.ActName}
		if m.Chapter != "" {
			parts = append(parts, m.Chapter)
		}
		parts = append(parts, "Section "+m.SectionID)
		return strings.Join(parts, " > ")
	}
	header := m.CaseTitle
	if m.YearOfJudgment > 0 {
		header = fmt.Sprintf("%s (%d)", header, m.YearOfJudgment)
	}
	if m.Outcome != "" && m.Outcome != models.OutcomeUnknown {
		header += " | Outcome: " + string(m.Outcome)
	}
	return header
}

func workflowID(jobID string) string {
	return "ingest-" + jobID
}

func saveUploadedFile(dstDir, jobID string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	finalPath := filepath.Join(dstDir, jobID+".pdf")
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "LX-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "LX-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "LX-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "LX-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "LX-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "LX-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "LX-API-4009"
		msg = "Operation conflicts with current job state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "LX-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusBadGateway:
		code = "LX-API-5020"
		msg = "Upstream provider unavailable. Retry shortly."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "question is required"):
			msg = "A question is required."
		case strings.Contains(low, "query is required"):
			msg = "A search query is required."
		case strings.Contains(low, "no files provided"):
			msg = "No PDF files were provided."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(low, "preview not ready"):
			msg = "The job has not produced a preview yet."
		case strings.Contains(low, "not awaiting confirmation"):
			msg = "The job is not awaiting confirmation."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

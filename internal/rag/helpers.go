package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

func traceIdOf(ctx context.Context) string {
	if v, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}

func returnOutput(job jobModel.Job, answer commonModels.StructuredAnswer) jobModel.Job {
	job.JobPayload.Answer = &answer
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

// jobError translates a taxonomy error into the job's outward failure state.
// The message shown to callers comes from the error kind, never from the
// internal error text.
func (s *service) jobError(job jobModel.Job, err error, canRetry bool) jobModel.Job {
	kind := ragerr.KindOf(err)
	s.logger.Error(string(kind), "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: ragerr.Message(kind),
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeIndexResolveStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, batchId string) (*vectorindex.Index, *vectorindex.Index, error) {
	*job = logOutput(*job, jobModel.IndexResolve, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_resolve", time.Since(start)) }()

	docIdx, err := s.batches.DocumentIndex(ctx, batchId)
	if err != nil {
		return nil, nil, wrapRetrieval("rag.resolveDocIndex", err)
	}
	chatIdx, err := s.batches.ChatIndex(ctx, batchId)
	if err != nil {
		return nil, nil, wrapRetrieval("rag.resolveChatIndex", err)
	}
	return docIdx, chatIdx, nil
}

func (s *service) executeDocSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, idx *vectorindex.Index) ([]vectorindex.SearchResult, error) {
	*job = logOutput(*job, jobModel.DocSearch, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("doc_search", time.Since(start)) }()

	matches, err := idx.Search(ctx, job.JobPayload.Question, config.DocRetrievalTopK)
	if err != nil {
		return nil, wrapRetrieval("rag.docSearch", err)
	}
	job.JobPayload.Sources = sourcesOf(matches)
	return matches, nil
}

func (s *service) executeChatSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, idx *vectorindex.Index) ([]vectorindex.SearchResult, error) {
	*job = logOutput(*job, jobModel.ChatSearch, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chat_search", time.Since(start)) }()

	matches, err := idx.Search(ctx, job.JobPayload.Question, config.ChatRetrievalTopK)
	if err != nil {
		return nil, wrapRetrieval("rag.chatSearch", err)
	}
	return matches, nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, prompt string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	raw, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", ragerr.New(ragerr.KindRetrieval, "rag.llmGenerate", err)
	}
	return raw, nil
}

func (s *service) executeParseStep(log *logger_i.Logger, job *jobModel.Job, raw string) (commonModels.StructuredAnswer, error) {
	*job = logOutput(*job, jobModel.SchemaParse, log)
	return llm.ParseStructuredAnswer(raw)
}

func (s *service) executeMemoryWriteStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, batchId string, answer commonModels.StructuredAnswer) {
	*job = logOutput(*job, jobModel.MemoryWrite, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("memory_write", time.Since(start)) }()

	entry := llm.MemoryEntry(job.JobPayload.Question, answer)
	if err := s.batches.AppendExchange(ctx, batchId, entry); err != nil {
		log.Error("MEMORY_WRITE_FAILURE", "error", err)
	}
}

func sourcesOf(matches []vectorindex.SearchResult) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, m := range matches {
		src := m.Metadata["source"]
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}

func wrapRetrieval(op string, err error) error {
	if ragerr.KindOf(err) != "" {
		return err
	}
	return ragerr.New(ragerr.KindRetrieval, op, err)
}

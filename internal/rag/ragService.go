package rag

import (
	"context"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/internal/rag/batchstore"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

// Service is the only surface the worker sees: it answers queries against a
// batch's indexes and builds the indexes for freshly uploaded batches. The
// batch store and the completion provider stay private to this package.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []commonModels.ChatTurn) jobModel.Job
	IngestBatch(ctx context.Context, job jobModel.Job) jobModel.Job
	EvictBatch(batchId string) error
}

type service struct {
	batches     *batchstore.Store
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(batches *batchstore.Store, provider llm.Provider) Service {
	return &service{
		batches:     batches,
		llmProvider: provider,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

// ProcessRequest runs one retrieval-augmented query: resolve both indexes,
// retrieve document passages and past exchanges, assemble the prompt, call
// the model once, parse strictly, then record the exchange in conversational
// memory. Only the memory write is allowed to fail without failing the job.
func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []commonModels.ChatTurn) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", traceIdOf(ctx), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	batchId := jobt.JobPayload.BatchId
	if len(jobt.JobPayload.ChatHistory) > 0 {
		messageHistory = jobt.JobPayload.ChatHistory
	}

	docIdx, chatIdx, err := s.executeIndexResolveStep(processContext, inMethodLogger, &jobt, batchId)
	if err != nil {
		return s.jobError(jobt, err, true)
	}

	docMatches, err := s.executeDocSearchStep(processContext, inMethodLogger, &jobt, docIdx)
	if err != nil {
		return s.jobError(jobt, err, true)
	}

	chatMatches, err := s.executeChatSearchStep(processContext, inMethodLogger, &jobt, chatIdx)
	if err != nil {
		return s.jobError(jobt, err, true)
	}

	prompt := llm.BuildPrompt(jobt.JobPayload.Question, docMatches, messageHistory, chatMatches)
	if tokens, err := llm.CountTokens(prompt); err == nil {
		jobt.JobPayload.PromptTokens = tokens
		metrics.CapturePromptTokens(tokens)
		inMethodLogger.Debug("Assembled prompt", "tokens", tokens)
	}

	rawAnswer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, prompt)
	if err != nil {
		return s.jobError(jobt, err, true)
	}

	answer, err := s.executeParseStep(inMethodLogger, &jobt, rawAnswer)
	if err != nil {
		return s.jobError(jobt, err, false)
	}

	// Recording the exchange only degrades future retrieval quality when it
	// fails, the caller still gets the answer.
	s.executeMemoryWriteStep(processContext, inMethodLogger, &jobt, batchId, answer)

	return returnOutput(jobt, answer)
}

// IngestBatch builds and persists both indexes of a freshly uploaded batch.
func (s *service) IngestBatch(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("batch_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestProcessing
	if err := s.batches.BuildBatch(ctx, job.JobPayload.BatchId); err != nil {
		return s.jobError(job, ragerr.New(ragerr.KindIngestion, "rag.IngestBatch", err), true)
	}
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

// EvictBatch removes a deleted chat's indexes from memory and disk.
func (s *service) EvictBatch(batchId string) error {
	return s.batches.Evict(batchId)
}

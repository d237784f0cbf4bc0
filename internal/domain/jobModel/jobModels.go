package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit  InternalStatus = "Init"
	IndexResolve   InternalStatus = "IndexResolve"
	DocSearch      InternalStatus = "DocSearch"
	ChatSearch     InternalStatus = "ChatSearch"
	LLMCall        InternalStatus = "LLM"
	SchemaParse    InternalStatus = "SchemaParse"
	MemoryWrite    InternalStatus = "MemoryWrite"
	RedisCall      InternalStatus = "Redis"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload carries query input and output for query jobs, and the batch to
// build for ingest jobs. BatchId doubles as the chat id: one upload batch is
// one conversation.
type JobPayload struct {
	BatchId     string                           `json:"batch_id,omitempty"`
	Question    string                           `json:"question,omitempty"`
	ChatHistory []commonModels.ChatTurn          `json:"chat_history,omitempty"`
	Answer      *commonModels.StructuredAnswer   `json:"answer,omitempty"`
	Sources     []string                         `json:"sources,omitempty"`
	PromptTokens int                             `json:"prompt_tokens,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	TrySaveChat(ctx context.Context, id string, payload JobPayload) error
	InitNewChat(ctx context.Context, id string) error
	DeleteChat(ctx context.Context, id string) error
	GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.ChatTurn, error)
}

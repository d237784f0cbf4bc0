package api

import (
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"20240101_093000"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string                         `json:"question"`
	Answer   *commonModels.StructuredAnswer `json:"answer,omitempty"`
	Sources  []string                       `json:"sources"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type UploadedFile struct {
	Filename string `json:"filename" example:"report.pdf"`
	Size     int64  `json:"size"`
}

type UploadResponse struct {
	ChatId    string         `json:"chat_id" example:"20240101_093000"`
	Files     []UploadedFile `json:"files"`
	Errors    []string       `json:"errors,omitempty"`
	JobId     string         `json:"job_id"`
	StatusURL string         `json:"status_url"`
}

type DeleteChatResponse struct {
	ChatId  string `json:"chat_id"`
	Deleted bool   `json:"deleted"`
}

// requests---------------------

type ChatRequest struct {
	Message     string                  `json:"message" validate:"required"`
	ChatID      string                  `json:"chatID" validate:"required"`
	ChatHistory []commonModels.ChatTurn `json:"chat_history,omitempty" validate:"omitempty,dive"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

package commonModels

import "time"

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	BatchId             string    `json:"batch_id"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	PageNum        int    `json:"page_num"`
	ChunkPageOrder int    `json:"chunk_order"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one prior exchange turn supplied by the caller. The core never
// persists these beyond the conversational index.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// StructuredAnswer is the schema the completion service must conform to.
// Anything that fails validation is a parse failure, never a partial success.
type StructuredAnswer struct {
	Answer              string   `json:"answer" validate:"required"`
	KeyPoints           []string `json:"key_points" validate:"required,min=1,dive,required"`
	ConfidenceLevel     string   `json:"confidence_level" validate:"required,oneof=high medium low"`
	SourcesCited        []string `json:"sources_cited,omitempty"`
	NeedsClarification  bool     `json:"needs_clarification"`
	ClarificationNeeded string   `json:"clarification_needed,omitempty"`
	FollowUpSuggestions []string `json:"follow_up_suggestions,omitempty"`
}

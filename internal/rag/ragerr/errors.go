// Package ragerr is the error taxonomy of the retrieval core. Every failure
// that crosses the request boundary is tagged with a Kind so the job layer
// can derive a user-visible message without leaking internal error text.
package ragerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindIngestion: chunking or embedding failed during an index build.
	// Fatal to that upload, the batch is left without a usable index.
	KindIngestion Kind = "INGESTION"
	// KindIndexNotFound: load was requested on a missing artifact. Callers
	// rebuild instead of propagating.
	KindIndexNotFound Kind = "INDEX_NOT_FOUND"
	// KindDuplicateId: id collision on build or add. Nothing is written.
	KindDuplicateId Kind = "DUPLICATE_ID"
	// KindRetrieval: embedding or search failed while answering a query.
	KindRetrieval Kind = "RETRIEVAL"
	// KindSchemaParse: the completion service output does not conform to the
	// structured answer schema.
	KindSchemaParse Kind = "SCHEMA_PARSE"
	// KindMemoryWrite: appending the answered exchange to the chat index
	// failed. Logged, never fatal to the request.
	KindMemoryWrite Kind = "MEMORY_WRITE"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Newf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost tagged error in err's chain, or ""
// when the chain carries no taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message maps a kind to the message shown to callers.
func Message(kind Kind) string {
	switch kind {
	case KindIngestion:
		return "Document ingestion failed"
	case KindIndexNotFound:
		return "No index found for this batch"
	case KindDuplicateId:
		return "Duplicate entry id"
	case KindRetrieval:
		return "Retrieval failed"
	case KindSchemaParse:
		return "Model returned a malformed answer"
	case KindMemoryWrite:
		return "Failed to record the exchange"
	default:
		return "Internal Server Error"
	}
}

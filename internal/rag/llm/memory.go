package llm

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocChat/internal/adapter/utils"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
)

// MemoryEntry projects an answered exchange into the compact record stored in
// the conversational index, so later queries in the same batch can retrieve
// it.
func MemoryEntry(question string, answer commonModels.StructuredAnswer) vectorindex.BuildEntry {
	return vectorindex.BuildEntry{
		Id: utils.GetNewUUID(),
		Text: fmt.Sprintf("Q: %s\nA: %s\nKey Points: %s",
			question, answer.Answer, strings.Join(answer.KeyPoints, ", ")),
		Metadata: map[string]string{
			"source":     "AI",
			"question":   question,
			"confidence": answer.ConfidenceLevel,
		},
	}
}

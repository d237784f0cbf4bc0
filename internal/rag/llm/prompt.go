package llm

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
	"github.com/pkoukk/tiktoken-go"
)

const emptyHistoryPlaceholder = "No previous chat history"
const emptyMemoryPlaceholder = "No relevant past information"

const promptTemplate = `You are a very good teaching assistant. You give a concise and clear answer to questions.

Question: %s

Context from knowledge base:
%s

Previous chat history:
%s

Relevant information from past conversations:
%s

Answer the question using the context and any related information from the chat history.
Provide key points, assess your confidence, cite sources, and suggest follow-up questions.

%s`

// BuildPrompt assembles the single completion request: question, document
// context, chronological transcript, past-conversation block and the output
// schema instructions. Empty history and memory get explicit placeholders so
// the template never renders a dangling section.
func BuildPrompt(question string, docMatches []vectorindex.SearchResult, history []commonModels.ChatTurn, chatMatches []vectorindex.SearchResult) string {
	return fmt.Sprintf(promptTemplate,
		question,
		RenderContext(docMatches),
		RenderHistory(history),
		RenderPastInfo(chatMatches),
		FormatInstructions,
	)
}

// RenderContext joins retrieved document passages. An empty document index
// yields an empty block, the model then leans on history and general
// knowledge.
func RenderContext(matches []vectorindex.SearchResult) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n")
}

// RenderHistory flattens the caller-supplied turns into a chronological
// transcript.
func RenderHistory(history []commonModels.ChatTurn) string {
	if len(history) == 0 {
		return emptyHistoryPlaceholder
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	return strings.Join(lines, "\n")
}

func RenderPastInfo(matches []vectorindex.SearchResult) string {
	if len(matches) == 0 {
		return emptyMemoryPlaceholder
	}
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n")
}

// CountTokens measures the rendered prompt with a tiktoken encoding so
// oversized context blocks show up in logs and metrics.
func CountTokens(prompt string) (int, error) {
	enc, err := tiktoken.EncodingForModel(config.TokenCountModel)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(prompt, nil, nil)), nil
}

package llm

import (
	"strings"
	"testing"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
)

func results(texts ...string) []vectorindex.SearchResult {
	out := make([]vectorindex.SearchResult, len(texts))
	for i, t := range texts {
		out[i] = vectorindex.SearchResult{Id: t, Text: t}
	}
	return out
}

func TestBuildPrompt_ContainsAllSections(t *testing.T) {
	history := []commonModels.ChatTurn{
		{Role: commonModels.RoleUser, Content: "earlier question"},
		{Role: commonModels.RoleAssistant, Content: "earlier answer"},
	}

	prompt := BuildPrompt("why is the sky blue",
		results("passage one", "passage two"),
		history,
		results("Q: old\nA: stuff"))

	for _, want := range []string{
		"Question: why is the sky blue",
		"passage one\n\npassage two",
		"user: earlier question\nassistant: earlier answer",
		"Q: old\nA: stuff",
		"Respond ONLY with a single JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_EmptySectionsGetPlaceholders(t *testing.T) {
	prompt := BuildPrompt("question", nil, nil, nil)

	if !strings.Contains(prompt, emptyHistoryPlaceholder) {
		t.Error("Empty history placeholder missing")
	}
	if !strings.Contains(prompt, emptyMemoryPlaceholder) {
		t.Error("Empty memory placeholder missing")
	}
}

func TestRenderHistory(t *testing.T) {
	if got := RenderHistory(nil); got != emptyHistoryPlaceholder {
		t.Errorf("RenderHistory(nil) = %q", got)
	}

	got := RenderHistory([]commonModels.ChatTurn{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
	})
	if got != "user: a\nassistant: b" {
		t.Errorf("RenderHistory = %q", got)
	}
}

func TestMemoryEntry(t *testing.T) {
	answer := commonModels.StructuredAnswer{
		Answer:          "chocolate cake",
		KeyPoints:       []string{"cocoa", "flour"},
		ConfidenceLevel: "medium",
	}
	entry := MemoryEntry("favorite dessert?", answer)

	if entry.Id == "" {
		t.Error("Memory entry needs a fresh id")
	}
	want := "Q: favorite dessert?\nA: chocolate cake\nKey Points: cocoa, flour"
	if entry.Text != want {
		t.Errorf("Text got %q, want %q", entry.Text, want)
	}
	if entry.Metadata["source"] != "AI" || entry.Metadata["question"] != "favorite dessert?" || entry.Metadata["confidence"] != "medium" {
		t.Errorf("Metadata mismatch: %+v", entry.Metadata)
	}
}

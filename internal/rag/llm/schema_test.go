package llm

import (
	"strings"
	"testing"

	"github.com/akolanti/DocChat/internal/rag/ragerr"
)

const validAnswerJSON = `{
	"answer": "The sky is blue.",
	"key_points": ["Rayleigh scattering"],
	"confidence_level": "high",
	"sources_cited": ["physics.pdf"],
	"needs_clarification": false
}`

func TestParseStructuredAnswer_Valid(t *testing.T) {
	answer, err := ParseStructuredAnswer(validAnswerJSON)
	if err != nil {
		t.Fatalf("ParseStructuredAnswer failed: %v", err)
	}
	if answer.Answer != "The sky is blue." {
		t.Errorf("Answer got %q", answer.Answer)
	}
	if len(answer.KeyPoints) != 1 || answer.KeyPoints[0] != "Rayleigh scattering" {
		t.Errorf("KeyPoints got %+v", answer.KeyPoints)
	}
	if answer.ConfidenceLevel != "high" {
		t.Errorf("ConfidenceLevel got %q", answer.ConfidenceLevel)
	}
}

func TestParseStructuredAnswer_StripsFences(t *testing.T) {
	raw := "Here is the result:\n```json\n" + validAnswerJSON + "\n```\nHope that helps!"
	answer, err := ParseStructuredAnswer(raw)
	if err != nil {
		t.Fatalf("ParseStructuredAnswer failed on fenced output: %v", err)
	}
	if answer.Answer != "The sky is blue." {
		t.Errorf("Answer got %q", answer.Answer)
	}
}

func TestParseStructuredAnswer_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain text", "I could not find an answer."},
		{"empty", ""},
		{"missing answer", `{"key_points": ["a"], "confidence_level": "low", "needs_clarification": false}`},
		{"missing key points", `{"answer": "x", "confidence_level": "low", "needs_clarification": false}`},
		{"empty key points", `{"answer": "x", "key_points": [], "confidence_level": "low", "needs_clarification": false}`},
		{"bad confidence", `{"answer": "x", "key_points": ["a"], "confidence_level": "certain", "needs_clarification": false}`},
		{"unknown field", `{"answer": "x", "key_points": ["a"], "confidence_level": "low", "needs_clarification": false, "mood": "happy"}`},
		{"truncated json", `{"answer": "x", "key_points": ["a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStructuredAnswer(tt.raw)
			if !ragerr.IsKind(err, ragerr.KindSchemaParse) {
				t.Errorf("Expected schema parse failure, got %v", err)
			}
		})
	}
}

func TestFormatInstructions_NameEveryField(t *testing.T) {
	for _, field := range []string{"answer", "key_points", "confidence_level", "sources_cited", "needs_clarification", "clarification_needed", "follow_up_suggestions"} {
		if !strings.Contains(FormatInstructions, field) {
			t.Errorf("FormatInstructions missing field %q", field)
		}
	}
}

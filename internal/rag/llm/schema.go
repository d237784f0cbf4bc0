package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
	"github.com/go-playground/validator/v10"
)

// FormatInstructions is appended to every prompt and mirrors the
// StructuredAnswer JSON schema field for field.
const FormatInstructions = `Respond ONLY with a single JSON object, no markdown fences and no text outside it, matching this schema:
{
  "answer": "<string, the answer to the question>",
  "key_points": ["<string>", ...],
  "confidence_level": "<high|medium|low>",
  "sources_cited": ["<string>", ...] (optional),
  "needs_clarification": <bool>,
  "clarification_needed": "<string>" (optional),
  "follow_up_suggestions": ["<string>", ...] (optional)
}`

var validate = validator.New()

// ParseStructuredAnswer parses the raw completion output strictly into a
// StructuredAnswer. Output that is not JSON, carries unknown fields, or fails
// field validation is a schema-parse failure, never a partial success.
func ParseStructuredAnswer(raw string) (commonModels.StructuredAnswer, error) {
	var answer commonModels.StructuredAnswer

	jsonStr, err := extractJSON(raw)
	if err != nil {
		return answer, ragerr.New(ragerr.KindSchemaParse, "llm.ParseStructuredAnswer", err)
	}

	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&answer); err != nil {
		return answer, ragerr.New(ragerr.KindSchemaParse, "llm.ParseStructuredAnswer", err)
	}
	if err := validate.Struct(answer); err != nil {
		return answer, ragerr.New(ragerr.KindSchemaParse, "llm.ParseStructuredAnswer", err)
	}
	return answer, nil
}

// extractJSON strips anything the model wrapped around the object, markdown
// fences included.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no valid json found")
	}
	return s[start : end+1], nil
}

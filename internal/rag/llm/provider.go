package llm

import "context"

// Provider is the completion-service boundary: one fully rendered prompt in,
// raw model text out. Schema conformance is checked by the caller side of
// this package, not by the provider.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

package rag_test

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
)

var errMemoryEmbed = errors.New("memory embedding rejected")

// fakeEmbedder hashes tokens into buckets so related texts score close
// without any network dependency.
type fakeEmbedder struct{}

const fakeDim = 256

func embedText(text string) []float32 {
	vec := make([]float32, fakeDim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%fakeDim]++
	}
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func (fakeEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return embedText(query), nil
}

func (fakeEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = embedText(c)
	}
	return out, nil
}

// MockLLM implements llm.Provider and records every prompt it was handed.
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
	Prompts    []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return `{"answer": "mocked llm response", "key_points": ["mock"], "confidence_level": "low", "needs_clarification": false}`, nil
}

// memoryFailEmbedder behaves like fakeEmbedder but refuses to embed memory
// records, so exchange appends fail while retrieval keeps working.
type memoryFailEmbedder struct{}

func (memoryFailEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return embedText(query), nil
}

func (memoryFailEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error) {
	for _, c := range chunks {
		if strings.HasPrefix(c, "Q: ") {
			return nil, errMemoryEmbed
		}
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = embedText(c)
	}
	return out, nil
}

package googleEmbedding

import (
	"testing"

	"google.golang.org/genai"
)

func TestFirstEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		result  *genai.EmbedContentResponse
		want    []float32
		wantErr bool
	}{
		{
			name:   "valid response",
			result: &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}}},
			want:   []float32{0.1, 0.2},
		},
		{
			name:    "nil response",
			result:  nil,
			wantErr: true,
		},
		{
			name:    "no embeddings",
			result:  &genai.EmbedContentResponse{},
			wantErr: true,
		},
		{
			name:    "nil embedding entry",
			result:  &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{nil}},
			wantErr: true,
		},
		{
			name:    "empty vector",
			result:  &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{}}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := firstEmbedding(tc.result)
			if tc.wantErr {
				if err == nil {
					t.Fatal("Expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Vector length = %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("Vector[%d] = %f, want %f", i, got[i], tc.want[i])
				}
			}
		})
	}
}

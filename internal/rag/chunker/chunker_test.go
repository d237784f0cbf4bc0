package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"shorter than window", "tiny"},
		{"exactly the window", strings.Repeat("a", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, 10, 3)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if len(chunks) != 1 {
				t.Fatalf("Expected 1 chunk, got %d", len(chunks))
			}
			if chunks[0] != tt.text {
				t.Errorf("Chunk got %q, want %q", chunks[0], tt.text)
			}
		})
	}
}

func TestSplit_ChunkCountFormula(t *testing.T) {
	// count = ceil((L - overlap) / (size - overlap)) for L > size
	tests := []struct {
		length  int
		size    int
		overlap int
		want    int
	}{
		{10, 4, 1, 3},
		{500, 100, 0, 5},
		{501, 100, 0, 6},
		{1000, 500, 300, 4},
	}

	for _, tt := range tests {
		text := strings.Repeat("x", tt.length)
		chunks, err := Split(text, tt.size, tt.overlap)
		if err != nil {
			t.Fatalf("Split(%d,%d,%d) failed: %v", tt.length, tt.size, tt.overlap, err)
		}
		if len(chunks) != tt.want {
			t.Errorf("Split(%d,%d,%d) chunk count = %d, want %d", tt.length, tt.size, tt.overlap, len(chunks), tt.want)
		}
	}
}

func TestSplit_OverlapAndReconstruction(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	size, overlap := 10, 4

	chunks, err := Split(text, size, overlap)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// consecutive chunks share exactly the overlap
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-overlap:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("Chunk %d does not start with the previous tail %q: %q", i, tail, chunks[i])
		}
	}

	// dropping the overlap from every chunk after the first rebuilds the text
	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += c[overlap:]
	}
	if rebuilt != text {
		t.Errorf("Reconstruction got %q, want %q", rebuilt, text)
	}
}

func TestSplit_MultiByteRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 20)
	chunks, err := Split(text, 25, 5)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for i, c := range chunks {
		if !strings.HasPrefix(text, chunks[0]) {
			t.Fatalf("First chunk is not a prefix of the input")
		}
		if len([]rune(c)) > 25 {
			t.Errorf("Chunk %d holds %d runes, want <= 25", i, len([]rune(c)))
		}
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Split("some text", tt.size, tt.overlap); err == nil {
				t.Errorf("Expected error for size=%d overlap=%d", tt.size, tt.overlap)
			}
		})
	}
}

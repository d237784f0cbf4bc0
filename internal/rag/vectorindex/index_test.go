package vectorindex

import (
	"context"
	"hash/fnv"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocChat/internal/rag/ragerr"
)

// fakeEmbedder hashes tokens into a fixed number of buckets so similar texts
// produce similar vectors without any network call.
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

func buildTestIndex(t *testing.T, texts map[string]string) *Index {
	t.Helper()
	entries := make([]BuildEntry, 0, len(texts))
	for id, text := range texts {
		entries = append(entries, BuildEntry{Id: id, Text: text, Metadata: map[string]string{"source": id + ".txt"}})
	}
	idx, err := Build(context.Background(), fakeEmbedder{}, entries)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return idx
}

func TestSearch_RanksByRelevance(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{
		"sky":    "the sky is blue and wide",
		"grass":  "the grass is green in summer",
		"galaxy": "stars form in distant galaxies",
	})

	results, err := idx.Search(context.Background(), "what color is the sky", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Id != "sky" {
		t.Errorf("Top hit got %q, want %q", results[0].Id, "sky")
	}
	if results[0].Score < results[1].Score {
		t.Errorf("Results not sorted by score: %v then %v", results[0].Score, results[1].Score)
	}
	if results[0].Metadata["source"] != "sky.txt" {
		t.Errorf("Metadata lost in search: %+v", results[0].Metadata)
	}
}

func TestSearch_EmptyIndexAndBadK(t *testing.T) {
	idx, err := Build(context.Background(), fakeEmbedder{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	results, err := idx.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search on empty index failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results from empty index, got %d", len(results))
	}

	idx = buildTestIndex(t, map[string]string{"a": "alpha"})
	if results, _ := idx.Search(context.Background(), "alpha", 0); len(results) != 0 {
		t.Errorf("Expected no results for k=0, got %d", len(results))
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{"a": "alpha", "b": "beta"})

	results, err := idx.Search(context.Background(), "alpha", 20)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected all 2 entries back, got %d", len(results))
	}
}

func TestAdd_DuplicateIdRejectedAtomically(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{"a": "alpha"})

	err := idx.Add(context.Background(), []BuildEntry{
		{Id: "b", Text: "beta"},
		{Id: "a", Text: "alpha again"},
	})
	if !ragerr.IsKind(err, ragerr.KindDuplicateId) {
		t.Fatalf("Expected duplicate id error, got %v", err)
	}
	// nothing from the failed batch may land
	if idx.Len() != 1 {
		t.Errorf("Index length after failed add = %d, want 1", idx.Len())
	}

	err = idx.Add(context.Background(), []BuildEntry{
		{Id: "c", Text: "gamma"},
		{Id: "c", Text: "gamma twice"},
	})
	if !ragerr.IsKind(err, ragerr.KindDuplicateId) {
		t.Fatalf("Expected duplicate id error within input, got %v", err)
	}
}

// raggedEmbedder returns vectors of per-call shrinking dimension, so a batch
// always carries a dimension mismatch after the first vector.
type raggedEmbedder struct{}

func (raggedEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (raggedEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i := range chunks {
		out[i] = make([]float32, 3+i)
		out[i][0] = 1
	}
	return out, nil
}

func TestAdd_DimensionMismatchRejectedAtomically(t *testing.T) {
	idx, err := Build(context.Background(), raggedEmbedder{}, []BuildEntry{{Id: "a", Text: "alpha"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	err = idx.Add(context.Background(), []BuildEntry{
		{Id: "b", Text: "beta"},
		{Id: "c", Text: "gamma"},
	})
	if !ragerr.IsKind(err, ragerr.KindIngestion) {
		t.Fatalf("Expected ingestion error, got %v", err)
	}
	// the first vector of the batch matched, the second did not; neither lands
	if idx.Len() != 1 {
		t.Errorf("Index length after failed add = %d, want 1", idx.Len())
	}

	results, err := idx.Search(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Id != "a" {
		t.Fatalf("Index contents changed by failed add, got %+v", results)
	}
}

func TestAdd_NewEntriesAreSearchable(t *testing.T) {
	idx := buildTestIndex(t, map[string]string{"a": "alpha particle physics"})

	if err := idx.Add(context.Background(), []BuildEntry{{Id: "b", Text: "chocolate cake recipe"}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	results, err := idx.Search(context.Background(), "chocolate cake", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Id != "b" {
		t.Fatalf("Added entry not retrievable, got %+v", results)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_doc.gob")
	idx := buildTestIndex(t, map[string]string{
		"sky":   "the sky is blue",
		"grass": "the grass is green",
	})

	if err := idx.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, fakeEmbedder{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Fatalf("Loaded %d entries, want %d", loaded.Len(), idx.Len())
	}

	results, err := loaded.Search(context.Background(), "blue sky", 1)
	if err != nil {
		t.Fatalf("Search on loaded index failed: %v", err)
	}
	if results[0].Id != "sky" || results[0].Text != "the sky is blue" {
		t.Errorf("Round trip lost data: %+v", results[0])
	}

	// duplicate checks survive the reload
	err = loaded.Add(context.Background(), []BuildEntry{{Id: "sky", Text: "again"}})
	if !ragerr.IsKind(err, ragerr.KindDuplicateId) {
		t.Errorf("Expected duplicate id error after reload, got %v", err)
	}
}

func TestLoad_MissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gob"), fakeEmbedder{})
	if !ragerr.IsKind(err, ragerr.KindIndexNotFound) {
		t.Fatalf("Expected IndexNotFound, got %v", err)
	}
}

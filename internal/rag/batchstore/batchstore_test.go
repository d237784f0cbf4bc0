package batchstore

import (
	"context"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
)

// countingEmbedder hashes tokens into buckets, deterministic and offline.
// BatchCalls counts embedding round trips to prove indexes build only once.
type countingEmbedder struct {
	BatchCalls int64
}

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

func (e *countingEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return embedText(query), nil
}

func (e *countingEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHugeDataSet bool) ([][]float32, error) {
	atomic.AddInt64(&e.BatchCalls, 1)
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = embedText(c)
	}
	return out, nil
}

func writeBatchFiles(t *testing.T, root string, batchId string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, batchId)
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDocumentIndex_BuildsFromBatchDir(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{
		"sky.txt":   "the sky is blue and wide above us",
		"grass.txt": "green grass grows across quiet meadows",
	})

	store := New(root, &countingEmbedder{})
	idx, err := store.DocumentIndex(context.Background(), "batch1")
	if err != nil {
		t.Fatalf("DocumentIndex failed: %v", err)
	}
	if idx.Len() == 0 {
		t.Fatal("Document index is empty after build")
	}

	results, err := idx.Search(context.Background(), "what color is the sky", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Metadata["source"] != "sky.txt" {
		t.Errorf("Top hit source got %q, want sky.txt", results[0].Metadata["source"])
	}

	if _, err := os.Stat(filepath.Join(root, "batch1", config.DocIndexArtifact)); err != nil {
		t.Errorf("Document index artifact not persisted: %v", err)
	}
}

func TestDocumentIndex_ReloadsArtifactWithoutSources(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{
		"doc.txt": "persistent retrieval survives process restarts",
	})

	store := New(root, &countingEmbedder{})
	if _, err := store.DocumentIndex(context.Background(), "batch1"); err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	// drop the source file, a fresh store must come back from the artifact alone
	if err := os.Remove(filepath.Join(root, "batch1", "doc.txt")); err != nil {
		t.Fatal(err)
	}

	embedder := &countingEmbedder{}
	fresh := New(root, embedder)
	idx, err := fresh.DocumentIndex(context.Background(), "batch1")
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if idx.Len() == 0 {
		t.Fatal("Reloaded index is empty")
	}
	if atomic.LoadInt64(&embedder.BatchCalls) != 0 {
		t.Errorf("Reload re-embedded documents, BatchCalls = %d", embedder.BatchCalls)
	}
}

func TestDocumentIndex_ConcurrentFirstAccessBuildsOnce(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{
		"doc.txt": "only one goroutine may pay the build cost",
	})

	embedder := &countingEmbedder{}
	store := New(root, embedder)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.DocumentIndex(context.Background(), "batch1"); err != nil {
				t.Errorf("DocumentIndex failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt64(&embedder.BatchCalls); calls != 1 {
		t.Errorf("Expected exactly 1 embedding batch call, got %d", calls)
	}
}

func TestChatIndex_SeededOnCreation(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{})

	store := New(root, &countingEmbedder{})
	idx, err := store.ChatIndex(context.Background(), "batch1")
	if err != nil {
		t.Fatalf("ChatIndex failed: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("Fresh chat index length = %d, want 1 seed entry", idx.Len())
	}

	results, err := idx.Search(context.Background(), "anything at all", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Id != config.ChatSeedId {
		t.Errorf("Expected only the seed entry, got %+v", results)
	}
}

func TestAppendExchange_PersistsAcrossStores(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{})

	store := New(root, &countingEmbedder{})
	entry := vectorindex.BuildEntry{
		Id:       "exch-1",
		Text:     "Q: favourite dessert\nA: chocolate cake\nKey Points: cake",
		Metadata: map[string]string{"source": "AI"},
	}
	if err := store.AppendExchange(context.Background(), "batch1", entry); err != nil {
		t.Fatalf("AppendExchange failed: %v", err)
	}

	fresh := New(root, &countingEmbedder{})
	idx, err := fresh.ChatIndex(context.Background(), "batch1")
	if err != nil {
		t.Fatalf("ChatIndex reload failed: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Reloaded chat index length = %d, want seed + 1 exchange", idx.Len())
	}

	results, err := idx.Search(context.Background(), "chocolate cake dessert", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Id != "exch-1" {
		t.Errorf("Top hit got %q, want the appended exchange", results[0].Id)
	}
}

func TestAppendExchange_DuplicateIdSurfaces(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{})

	store := New(root, &countingEmbedder{})
	entry := vectorindex.BuildEntry{Id: "exch-1", Text: "Q: a\nA: b\nKey Points: c"}
	if err := store.AppendExchange(context.Background(), "batch1", entry); err != nil {
		t.Fatalf("AppendExchange failed: %v", err)
	}
	err := store.AppendExchange(context.Background(), "batch1", entry)
	if !ragerr.IsKind(err, ragerr.KindDuplicateId) {
		t.Fatalf("Expected duplicate id error, got %v", err)
	}
}

func TestEvict_RemovesArtifactsAndCache(t *testing.T) {
	root := t.TempDir()
	writeBatchFiles(t, root, "batch1", map[string]string{
		"doc.txt": "soon to be forgotten",
	})

	embedder := &countingEmbedder{}
	store := New(root, embedder)
	if err := store.BuildBatch(context.Background(), "batch1"); err != nil {
		t.Fatalf("BuildBatch failed: %v", err)
	}

	if err := store.Evict("batch1"); err != nil {
		t.Fatalf("Evict failed: %v", err)
	}

	for _, name := range []string{config.DocIndexArtifact, config.ChatIndexArtifact} {
		if _, err := os.Stat(filepath.Join(root, "batch1", name)); !os.IsNotExist(err) {
			t.Errorf("Artifact %s still on disk after Evict", name)
		}
	}

	// next access rebuilds from source files rather than serving a stale cache
	callsBefore := atomic.LoadInt64(&embedder.BatchCalls)
	if _, err := store.DocumentIndex(context.Background(), "batch1"); err != nil {
		t.Fatalf("Rebuild after Evict failed: %v", err)
	}
	if atomic.LoadInt64(&embedder.BatchCalls) == callsBefore {
		t.Error("DocumentIndex served a cached index after Evict")
	}
}

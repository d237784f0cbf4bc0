// Package vectorindex is the nearest-neighbour structure behind every batch:
// an exact brute-force cosine index over (id, vector, text, metadata) tuples
// that persists itself as a single self-contained artifact on disk.
package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
)

type Entry struct {
	Id       string
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// BuildEntry is the pre-embedding form of an Entry.
type BuildEntry struct {
	Id       string
	Text     string
	Metadata map[string]string
}

type SearchResult struct {
	Id       string
	Text     string
	Metadata map[string]string
	Score    float32
}

// Index holds normalized vectors, so similarity is a plain inner product.
// The embedder is injected at construction and never serialized.
type Index struct {
	mu       sync.RWMutex
	entries  []Entry
	ids      map[string]int
	dim      int
	embedder embedding.Embedder
}

// Build embeds every entry text and returns a searchable index. Any id
// duplicated within the input set fails the whole build, nothing is kept.
func Build(ctx context.Context, embedder embedding.Embedder, entries []BuildEntry) (*Index, error) {
	idx := &Index{
		ids:      make(map[string]int, len(entries)),
		embedder: embedder,
	}
	if err := idx.appendEntries(ctx, entries); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add appends new entries without touching vectors already stored. The append
// is all or nothing: ids are checked against the index and within the input
// before any embedding call is made.
func (idx *Index) Add(ctx context.Context, entries []BuildEntry) error {
	return idx.appendEntries(ctx, entries)
}

func (idx *Index) appendEntries(ctx context.Context, entries []BuildEntry) error {
	if len(entries) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := make(map[string]bool, len(entries))
	texts := make([]string, len(entries))
	for i, e := range entries {
		if _, exists := idx.ids[e.Id]; exists || seen[e.Id] {
			return ragerr.Newf(ragerr.KindDuplicateId, "vectorindex.append", "entry id %q already present", e.Id)
		}
		seen[e.Id] = true
		texts[i] = e.Text
	}

	vectors, err := idx.embedder.BatchEmbedding(ctx, texts, len(texts) > hugeDataSetThreshold)
	if err != nil {
		return ragerr.New(ragerr.KindIngestion, "vectorindex.append", err)
	}
	if len(vectors) != len(entries) {
		return ragerr.Newf(ragerr.KindIngestion, "vectorindex.append", "embedder returned %d vectors for %d texts", len(vectors), len(entries))
	}

	// normalize and check every dimension before the index is touched, so a
	// bad vector anywhere in the batch leaves the index as it was
	dim := idx.dim
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		vec := normalize(v)
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return ragerr.Newf(ragerr.KindIngestion, "vectorindex.append", "vector dimension %d does not match index dimension %d", len(vec), dim)
		}
		normalized[i] = vec
	}

	idx.dim = dim
	for i, e := range entries {
		idx.ids[e.Id] = len(idx.entries)
		idx.entries = append(idx.entries, Entry{
			Id:       e.Id,
			Vector:   normalized[i],
			Text:     e.Text,
			Metadata: e.Metadata,
		})
	}
	return nil
}

// Search embeds the query and returns the top k entries by cosine similarity,
// descending. Ties keep insertion order. Fewer than k results are returned
// when the index holds fewer entries; an empty index yields an empty slice.
func (idx *Index) Search(ctx context.Context, queryText string, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) == 0 {
		return nil, nil
	}

	queryVec, err := idx.embedder.GetEmbedding(ctx, queryText)
	if err != nil {
		return nil, ragerr.New(ragerr.KindRetrieval, "vectorindex.search", err)
	}
	queryVec = normalize(queryVec)

	scored := make([]SearchResult, len(idx.entries))
	for i, e := range idx.entries {
		scored[i] = SearchResult{
			Id:       e.Id,
			Text:     e.Text,
			Metadata: e.Metadata,
			Score:    dot(queryVec, e.Vector),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// hugeDataSetThreshold routes very large builds through the embedder's batch
// job path instead of inline calls.
const hugeDataSetThreshold = 1000000

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

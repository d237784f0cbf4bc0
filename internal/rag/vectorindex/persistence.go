package vectorindex

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
)

// indexState is the on-disk form. The artifact is self contained: vectors,
// original text and metadata round-trip without any sidecar files.
type indexState struct {
	Dim     int
	Entries []Entry
}

// Save writes the index to path atomically: encode to a temp file in the same
// directory, fsync, then rename over the target.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	state := indexState{Dim: idx.dim, Entries: idx.entries}
	idx.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(state); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing index artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing index artifact: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load restores an index from path. A missing artifact is reported as an
// IndexNotFound error so callers can rebuild, it never yields a silently
// empty index.
func Load(path string, embedder embedding.Embedder) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ragerr.Newf(ragerr.KindIndexNotFound, "vectorindex.load", "no artifact at %s", path)
		}
		return nil, fmt.Errorf("opening index artifact: %w", err)
	}
	defer f.Close()

	var state indexState
	if err := gob.NewDecoder(f).Decode(&state); err != nil {
		return nil, fmt.Errorf("decoding index artifact %s: %w", path, err)
	}

	idx := &Index{
		entries:  state.Entries,
		dim:      state.Dim,
		ids:      make(map[string]int, len(state.Entries)),
		embedder: embedder,
	}
	for i, e := range state.Entries {
		idx.ids[e.Id] = i
	}
	return idx, nil
}

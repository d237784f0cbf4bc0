// Package batchstore owns the two vector indexes of every upload batch: the
// read-only document index and the append-only conversational index. Indexes
// are loaded lazily, cached per batch id, and rebuilt from the batch
// directory when no persisted artifact exists.
package batchstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/internal/rag/ingest"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

type Store struct {
	root     string
	embedder embedding.Embedder
	logger   *logger_i.Logger

	mu         sync.Mutex
	batchLocks map[string]*sync.Mutex
	docCache   map[string]*vectorindex.Index
	chatCache  map[string]*vectorindex.Index
}

func New(root string, embedder embedding.Embedder) *Store {
	return &Store{
		root:       root,
		embedder:   embedder,
		logger:     logger_i.NewLogger("BatchStore"),
		batchLocks: make(map[string]*sync.Mutex),
		docCache:   make(map[string]*vectorindex.Index),
		chatCache:  make(map[string]*vectorindex.Index),
	}
}

func (s *Store) BatchDir(batchId string) string {
	return filepath.Join(s.root, batchId)
}

// lockFor returns the mutex serializing all first-time creation and all
// chat-index mutation for one batch. Unrelated batches never contend.
func (s *Store) lockFor(batchId string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.batchLocks[batchId]
	if !ok {
		l = &sync.Mutex{}
		s.batchLocks[batchId] = l
	}
	return l
}

// DocumentIndex returns the batch's document index: cache, then persisted
// artifact, then a fresh build from every document in the batch directory.
// The check-then-create runs under the per-batch lock so concurrent first
// accesses build exactly once.
func (s *Store) DocumentIndex(ctx context.Context, batchId string) (*vectorindex.Index, error) {
	lock := s.lockFor(batchId)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	cached, ok := s.docCache[batchId]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	artifact := filepath.Join(s.BatchDir(batchId), config.DocIndexArtifact)
	idx, err := vectorindex.Load(artifact, s.embedder)
	if ragerr.IsKind(err, ragerr.KindIndexNotFound) {
		s.logger.Info("No document index artifact, building", "batchId", batchId)
		idx, err = s.buildDocumentIndex(ctx, batchId, artifact)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docCache[batchId] = idx
	s.mu.Unlock()
	return idx, nil
}

// ChatIndex returns the batch's conversational index, creating it with the
// single placeholder seed when no artifact exists yet. Searching a fresh chat
// index therefore returns the low-relevance seed instead of failing.
func (s *Store) ChatIndex(ctx context.Context, batchId string) (*vectorindex.Index, error) {
	lock := s.lockFor(batchId)
	lock.Lock()
	defer lock.Unlock()

	return s.chatIndexLocked(ctx, batchId)
}

func (s *Store) chatIndexLocked(ctx context.Context, batchId string) (*vectorindex.Index, error) {
	s.mu.Lock()
	cached, ok := s.chatCache[batchId]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	artifact := filepath.Join(s.BatchDir(batchId), config.ChatIndexArtifact)
	idx, err := vectorindex.Load(artifact, s.embedder)
	if ragerr.IsKind(err, ragerr.KindIndexNotFound) {
		s.logger.Info("No chat index artifact, seeding", "batchId", batchId)
		idx, err = s.buildChatIndex(ctx, artifact)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.chatCache[batchId] = idx
	s.mu.Unlock()
	return idx, nil
}

// AppendExchange appends one answered exchange to the batch's chat index and
// persists it. Mutate-and-persist runs under the per-batch lock; a failure
// before the save leaves the artifact untouched.
func (s *Store) AppendExchange(ctx context.Context, batchId string, entry vectorindex.BuildEntry) error {
	lock := s.lockFor(batchId)
	lock.Lock()
	defer lock.Unlock()

	idx, err := s.chatIndexLocked(ctx, batchId)
	if err != nil {
		return ragerr.New(ragerr.KindMemoryWrite, "batchstore.AppendExchange", err)
	}
	if err := idx.Add(ctx, []vectorindex.BuildEntry{entry}); err != nil {
		if ragerr.IsKind(err, ragerr.KindDuplicateId) {
			return err
		}
		return ragerr.New(ragerr.KindMemoryWrite, "batchstore.AppendExchange", err)
	}
	artifact := filepath.Join(s.BatchDir(batchId), config.ChatIndexArtifact)
	if err := idx.Save(artifact); err != nil {
		return ragerr.New(ragerr.KindMemoryWrite, "batchstore.AppendExchange", err)
	}
	return nil
}

// BuildBatch builds and persists both indexes for a batch eagerly. Upload
// ingestion calls this once per batch so the first chat request does not pay
// the build cost.
func (s *Store) BuildBatch(ctx context.Context, batchId string) error {
	if _, err := s.DocumentIndex(ctx, batchId); err != nil {
		return err
	}
	_, err := s.ChatIndex(ctx, batchId)
	return err
}

// Evict drops a batch from the cache and removes its on-disk index state.
// Called when the owning chat is deleted.
func (s *Store) Evict(batchId string) error {
	lock := s.lockFor(batchId)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.docCache, batchId)
	delete(s.chatCache, batchId)
	s.mu.Unlock()

	dir := s.BatchDir(batchId)
	for _, name := range []string{config.DocIndexArtifact, config.ChatIndexArtifact} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	s.logger.Info("Evicted batch indexes", "batchId", batchId)
	return nil
}

func (s *Store) buildDocumentIndex(ctx context.Context, batchId string, artifact string) (*vectorindex.Index, error) {
	entries, err := ingest.BatchEntries(s.BatchDir(batchId))
	if err != nil {
		return nil, err
	}
	idx, err := vectorindex.Build(ctx, s.embedder, entries)
	if err != nil {
		return nil, err
	}
	if err := idx.Save(artifact); err != nil {
		return nil, ragerr.New(ragerr.KindIngestion, "batchstore.buildDocumentIndex", err)
	}
	s.logger.Info("Built document index", "batchId", batchId, "entries", idx.Len())
	return idx, nil
}

func (s *Store) buildChatIndex(ctx context.Context, artifact string) (*vectorindex.Index, error) {
	seed := vectorindex.BuildEntry{
		Id:       config.ChatSeedId,
		Text:     config.ChatSeedText,
		Metadata: map[string]string{"source": "seed"},
	}
	idx, err := vectorindex.Build(ctx, s.embedder, []vectorindex.BuildEntry{seed})
	if err != nil {
		return nil, err
	}
	if err := idx.Save(artifact); err != nil {
		return nil, ragerr.New(ragerr.KindIngestion, "batchstore.buildChatIndex", err)
	}
	return idx, nil
}

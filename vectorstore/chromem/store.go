// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chromem implements vectorstore.Store on top of chromem-go.
package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/poiesic/recall/vectorstore"
)

// Store is a chromem-go backed vector index. All embeddings are computed
// upstream and supplied explicitly, so the store never calls an embedding
// model itself.
type Store struct {
	db     *chromem.DB
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ vectorstore.Store = (*Store)(nil)

// noEmbed satisfies chromem's embedding hook. Every document and query
// carries a precomputed vector, so reaching this function is a bug.
func noEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("chromem store received a document without an embedding")
}

// Open creates a Store persisted under path. Collections written by an
// earlier process are loaded back on open.
func Open(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %w", path, err)
	}
	return newStore(db), nil
}

// OpenInMemory creates a Store that keeps all collections in memory.
// Used by tests and throwaway sessions.
func OpenInMemory() *Store {
	return newStore(chromem.NewDB())
}

func newStore(db *chromem.DB) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "vectorstore"),
	}
}

// Upsert writes records into the named collection, creating it on first
// use. Records keep their supplied IDs, so re-ingesting the same segment
// overwrites rather than duplicates.
func (s *Store) Upsert(ctx context.Context, collection string, records []vectorstore.Record) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if len(records) == 0 {
		return vectorstore.ErrEmptyBatch
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Metadata:  rec.Metadata,
			Embedding: rec.Embedding,
			Content:   rec.Text,
		})
	}

	concurrency := runtime.NumCPU()
	if concurrency < 1 {
		concurrency = 1
	}
	if err := col.AddDocuments(ctx, docs, concurrency); err != nil {
		return fmt.Errorf("adding %d documents to %s: %w", len(docs), collection, err)
	}

	s.logger.Debug("upserted records", "collection", collection, "count", len(docs))
	return nil
}

// Search returns up to k matches from the named collection, ordered by
// descending cosine similarity. k is clamped to the collection size since
// chromem rejects nResults larger than the document count.
func (s *Store) Search(ctx context.Context, collection string, embedding []float32, k int) ([]vectorstore.Match, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	col := s.db.GetCollection(collection, noEmbed)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, collection)
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	matches := make([]vectorstore.Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, vectorstore.Match{
			ID:         res.ID,
			Text:       res.Content,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		})
	}
	return matches, nil
}

// Collections lists the collection names present in the store, sorted for
// stable output.
func (s *Store) Collections() []string {
	if err := s.ensureOpen(); err != nil {
		return nil
	}

	cols := s.db.ListCollections()
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close marks the store closed. chromem holds no OS resources beyond files
// already flushed on write, so this only fences further calls.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return vectorstore.ErrStoreClosed
	}
	return nil
}

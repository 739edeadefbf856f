// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/vectorstore"
)

const (
	// DefaultThreshold is the minimum cosine similarity a segment must
	// reach to be used as context.
	DefaultThreshold float32 = 0.65

	// DefaultTopK is the number of candidates fetched per collection
	// before threshold filtering.
	DefaultTopK = 3
)

// Retriever embeds a question once and searches it against a set of
// collections in parallel, keeping only segments above the similarity
// threshold.
type Retriever struct {
	embedder  ai.Embedder
	store     vectorstore.Store
	pool      *ants.Pool
	logger    *slog.Logger
	threshold float32
	topK      int
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold float32) RetrieverOption {
	return func(r *Retriever) {
		r.threshold = threshold
	}
}

// WithTopK overrides the per-collection candidate count.
func WithTopK(topK int) RetrieverOption {
	return func(r *Retriever) {
		r.topK = topK
	}
}

// NewRetriever creates a Retriever with a worker pool sized to the
// machine. Callers must Release it when done.
func NewRetriever(embedder ai.Embedder, store vectorstore.Store, opts ...RetrieverOption) (*Retriever, error) {
	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolUnavailable, err)
	}

	r := &Retriever{
		embedder:  embedder,
		store:     store,
		pool:      pool,
		logger:    slog.Default().With("component", "retriever"),
		threshold: DefaultThreshold,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Release releases the worker pool. The retriever should not be used
// after calling Release.
func (r *Retriever) Release() {
	r.pool.Release()
}

// Retrieve searches the question against every collection in parallel.
// Results keep collection order first and per-collection ranking second,
// with duplicate texts removed. A collection that fails to search is
// logged and skipped, degrading the answer rather than failing the
// query.
func (r *Retriever) Retrieve(ctx context.Context, collections []string, question string) ([]vectorstore.Match, error) {
	if len(collections) == 0 {
		return nil, nil
	}

	embedding, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: embedding question: %v", core.ErrExternalTimeout, err)
		}
		return nil, fmt.Errorf("%w: embedding question: %v", core.ErrRetrievalFailed, err)
	}

	// Each collection writes into its own slot so the merge below keeps
	// a deterministic order regardless of completion timing.
	slots := make([][]vectorstore.Match, len(collections))
	var wg sync.WaitGroup
	for i, collection := range collections {
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			matches, err := r.store.Search(ctx, collection, embedding, r.topK)
			if err != nil {
				r.logger.Warn("skipping collection", "collection", collection, "error", err)
				return
			}
			slots[i] = keepAboveThreshold(matches, r.threshold)
		})
		if submitErr != nil {
			wg.Done()
			r.logger.Warn("skipping collection", "collection", collection, "error", submitErr)
		}
	}
	wg.Wait()

	seen := make(map[uint64]struct{})
	var merged []vectorstore.Match
	for _, slot := range slots {
		for _, match := range slot {
			hash := core.HashContent(match.Text)
			if _, dup := seen[hash]; dup {
				continue
			}
			seen[hash] = struct{}{}
			merged = append(merged, match)
		}
	}
	return merged, nil
}

func keepAboveThreshold(matches []vectorstore.Match, threshold float32) []vectorstore.Match {
	var kept []vectorstore.Match
	for _, match := range matches {
		if match.Similarity >= threshold {
			kept = append(kept, match)
		}
	}
	return kept
}

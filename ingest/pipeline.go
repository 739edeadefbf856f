package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/chunk"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/profile"
	"github.com/poiesic/recall/retry"
	"github.com/poiesic/recall/vectorstore"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// Result describes a completed ingestion: the collection the segments
// landed in and the IDs they were stored under.
type Result struct {
	Collection string
	IDs        []string
}

// Pipeline turns raw documents into an embedded, searchable collection
// owned by a user. The stages are: chunk, embed, upsert, register. The
// registry is only updated after every earlier stage succeeds, so a
// failed ingestion never leaves a user pointing at a half-built
// collection.
type Pipeline struct {
	embedder ai.Embedder
	store    vectorstore.Store
	registry profile.Registry
	splitter *chunk.Splitter
	logger   *slog.Logger

	maxRetries     int
	retryBaseDelay time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSplitter replaces the default 500/100 splitter.
func WithSplitter(splitter *chunk.Splitter) Option {
	return func(p *Pipeline) {
		p.splitter = splitter
	}
}

// WithRetry tunes the embedding retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) {
		p.maxRetries = maxAttempts
		p.retryBaseDelay = baseDelay
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder ai.Embedder, store vectorstore.Store, registry profile.Registry, opts ...Option) (*Pipeline, error) {
	splitter, err := chunk.NewSplitter(chunk.DefaultSize, chunk.DefaultOverlap)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		embedder:       embedder,
		store:          store,
		registry:       registry,
		splitter:       splitter,
		logger:         slog.Default().With("component", "ingest"),
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Ingest chunks, embeds, and stores docs for userID. collectionName may
// be empty, in which case a fresh name is generated. Returns the
// collection name and the stored segment IDs. Input that yields no
// segments is a no-op: the zero Result comes back with a nil error and
// neither the embedder nor the store is contacted.
func (p *Pipeline) Ingest(ctx context.Context, userID string, docs []core.Document, collectionName string) (Result, error) {
	segments, err := p.splitter.Split(docs)
	if err != nil {
		return Result{}, err
	}
	if len(segments) == 0 {
		p.logger.Info("nothing to ingest", "user", userID)
		return Result{}, nil
	}

	if collectionName == "" {
		collectionName = newCollectionName()
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Content
	}

	var embeddings [][]float32
	err = retry.WithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxRetries, p.retryBaseDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: embedding %d segments: %v", core.ErrExternalTimeout, len(texts), err)
		}
		return Result{}, fmt.Errorf("%w: embedding %d segments: %v", core.ErrEmbeddingFailed, len(texts), err)
	}
	if len(embeddings) != len(segments) {
		return Result{}, fmt.Errorf("%w: got %d vectors for %d segments", ErrEmbeddingMismatch, len(embeddings), len(segments))
	}

	records := make([]vectorstore.Record, len(segments))
	ids := make([]string, len(segments))
	for i, seg := range segments {
		id := strconv.Itoa(i)
		metadata := map[string]string{core.MetaBatch: collectionName}
		maps.Copy(metadata, seg.Metadata)

		records[i] = vectorstore.Record{
			ID:        id,
			Text:      seg.Content,
			Embedding: embeddings[i],
			Metadata:  metadata,
		}
		ids[i] = id
	}

	if err := p.store.Upsert(ctx, collectionName, records); err != nil {
		return Result{}, fmt.Errorf("%w: %v", core.ErrStoreFailed, err)
	}

	// Register ownership last so the user never sees a collection that
	// failed to materialize.
	if err := p.registry.AppendCollection(ctx, userID, collectionName); err != nil {
		return Result{}, fmt.Errorf("%w: registering %s for %s: %v", core.ErrStoreFailed, collectionName, userID, err)
	}

	p.logger.Info("ingested documents",
		"user", userID,
		"collection", collectionName,
		"segments", len(segments))

	return Result{Collection: collectionName, IDs: ids}, nil
}

// newCollectionName generates a fresh collection name with a short random
// suffix, e.g. collection_3f9ab1c2.
func newCollectionName() string {
	id := uuid.New()
	return fmt.Sprintf("collection_%x", id[:4])
}

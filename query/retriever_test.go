package query

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/vectorstore"
)

// stubStore serves canned matches per collection and records which
// collections were searched.
type stubStore struct {
	mu       sync.Mutex
	matches  map[string][]vectorstore.Match
	failing  map[string]error
	searched []string
}

var _ vectorstore.Store = (*stubStore)(nil)

func newStubStore() *stubStore {
	return &stubStore{
		matches: make(map[string][]vectorstore.Match),
		failing: make(map[string]error),
	}
}

func (s *stubStore) Upsert(ctx context.Context, collection string, records []vectorstore.Record) error {
	return nil
}

func (s *stubStore) Search(ctx context.Context, collection string, embedding []float32, k int) ([]vectorstore.Match, error) {
	s.mu.Lock()
	s.searched = append(s.searched, collection)
	s.mu.Unlock()

	if err, ok := s.failing[collection]; ok {
		return nil, err
	}
	matches, ok := s.matches[collection]
	if !ok {
		return nil, vectorstore.ErrCollectionNotFound
	}
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *stubStore) Collections() []string { return nil }

func (s *stubStore) Close() error { return nil }

func newTestRetriever(t *testing.T, store vectorstore.Store, opts ...RetrieverOption) (*Retriever, *mock.MockEmbedder) {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	retriever, err := NewRetriever(embedder, store, opts...)
	require.NoError(t, err)
	t.Cleanup(retriever.Release)
	return retriever, embedder
}

func TestRetrieve_ThresholdFilter(t *testing.T) {
	store := newStubStore()
	store.matches["c1"] = []vectorstore.Match{
		{ID: "0", Text: "strong match", Similarity: 0.9},
		{ID: "1", Text: "borderline match", Similarity: 0.7},
		{ID: "2", Text: "weak match", Similarity: 0.5},
	}
	retriever, _ := newTestRetriever(t, store)

	matches, err := retriever.Retrieve(context.Background(), []string{"c1"}, "question")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "strong match", matches[0].Text)
	assert.Equal(t, "borderline match", matches[1].Text)
}

func TestRetrieve_ExactThresholdSurvives(t *testing.T) {
	store := newStubStore()
	store.matches["c1"] = []vectorstore.Match{
		{ID: "0", Text: "right on the line", Similarity: 0.65},
	}
	retriever, _ := newTestRetriever(t, store)

	matches, err := retriever.Retrieve(context.Background(), []string{"c1"}, "question")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRetrieve_EmptyCollectionSet(t *testing.T) {
	retriever, embedder := newTestRetriever(t, newStubStore())

	matches, err := retriever.Retrieve(context.Background(), nil, "question")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 0, embedder.CallCount(), "no collections means no embedding call")
}

func TestRetrieve_CollectionOrderPreserved(t *testing.T) {
	store := newStubStore()
	store.matches["first"] = []vectorstore.Match{
		{ID: "0", Text: "from first", Similarity: 0.7},
	}
	store.matches["second"] = []vectorstore.Match{
		{ID: "0", Text: "from second", Similarity: 0.99},
	}
	retriever, _ := newTestRetriever(t, store)

	matches, err := retriever.Retrieve(context.Background(), []string{"first", "second"}, "question")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "from first", matches[0].Text,
		"collection order wins over raw similarity across collections")
	assert.Equal(t, "from second", matches[1].Text)
}

func TestRetrieve_DeduplicatesByText(t *testing.T) {
	store := newStubStore()
	store.matches["c1"] = []vectorstore.Match{
		{ID: "0", Text: "shared segment", Similarity: 0.9},
	}
	store.matches["c2"] = []vectorstore.Match{
		{ID: "0", Text: "shared segment", Similarity: 0.8},
		{ID: "1", Text: "unique segment", Similarity: 0.8},
	}
	retriever, _ := newTestRetriever(t, store)

	matches, err := retriever.Retrieve(context.Background(), []string{"c1", "c2"}, "question")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "shared segment", matches[0].Text)
	assert.Equal(t, "unique segment", matches[1].Text)
}

func TestRetrieve_FailingCollectionDegrades(t *testing.T) {
	store := newStubStore()
	store.failing["broken"] = errors.New("disk trouble")
	store.matches["healthy"] = []vectorstore.Match{
		{ID: "0", Text: "still here", Similarity: 0.9},
	}
	retriever, _ := newTestRetriever(t, store)

	matches, err := retriever.Retrieve(context.Background(), []string{"broken", "healthy"}, "question")
	require.NoError(t, err, "a failing collection must not fail the query")
	require.Len(t, matches, 1)
	assert.Equal(t, "still here", matches[0].Text)
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	retriever, embedder := newTestRetriever(t, newStubStore())
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model offline")
	}

	_, err := retriever.Retrieve(context.Background(), []string{"c1"}, "question")
	require.ErrorIs(t, err, core.ErrRetrievalFailed)
}

func TestRetrieve_EmbeddingTimeout(t *testing.T) {
	retriever, embedder := newTestRetriever(t, newStubStore())
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := retriever.Retrieve(context.Background(), []string{"c1"}, "question")
	require.ErrorIs(t, err, core.ErrExternalTimeout)
}

func TestRetrieve_CustomThresholdAndTopK(t *testing.T) {
	store := newStubStore()
	store.matches["c1"] = []vectorstore.Match{
		{ID: "0", Text: "a", Similarity: 0.5},
		{ID: "1", Text: "b", Similarity: 0.4},
		{ID: "2", Text: "c", Similarity: 0.3},
	}
	retriever, _ := newTestRetriever(t, store, WithThreshold(0.4), WithTopK(2))

	matches, err := retriever.Retrieve(context.Background(), []string{"c1"}, "question")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "topK trims candidates before the threshold filter")
}

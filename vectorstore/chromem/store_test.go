package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/vectorstore"
)

func seedRecords() []vectorstore.Record {
	return []vectorstore.Record{
		{ID: "0", Text: "the cat sat on the mat", Embedding: []float32{1, 0, 0}},
		{ID: "1", Text: "dogs chase the postman", Embedding: []float32{0, 1, 0}},
		{ID: "2", Text: "a cat naps in the sun", Embedding: []float32{0.9, 0.1, 0}},
	}
}

func TestUpsertAndSearch(t *testing.T) {
	store := OpenInMemory()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "collection_aaaa0000", seedRecords()))

	matches, err := store.Search(ctx, "collection_aaaa0000", []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "0", matches[0].ID)
	assert.Equal(t, "the cat sat on the mat", matches[0].Text)
	assert.Equal(t, "2", matches[1].ID)

	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i].Similarity, matches[i-1].Similarity,
			"matches must be ordered by descending similarity")
	}
}

func TestSearch_ClampsKToCollectionSize(t *testing.T) {
	store := OpenInMemory()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "small", seedRecords()[:2]))

	matches, err := store.Search(ctx, "small", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSearch_UnknownCollection(t *testing.T) {
	store := OpenInMemory()
	defer store.Close()

	_, err := store.Search(context.Background(), "missing", []float32{1, 0, 0}, 3)
	require.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestUpsert_EmptyBatch(t *testing.T) {
	store := OpenInMemory()
	defer store.Close()

	err := store.Upsert(context.Background(), "empty", nil)
	require.ErrorIs(t, err, vectorstore.ErrEmptyBatch)
}

func TestUpsert_SameIDOverwrites(t *testing.T) {
	store := OpenInMemory()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "dupes", seedRecords()))
	require.NoError(t, store.Upsert(ctx, "dupes", []vectorstore.Record{
		{ID: "0", Text: "replacement text", Embedding: []float32{1, 0, 0}},
	}))

	matches, err := store.Search(ctx, "dupes", []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Equal(t, "replacement text", matches[0].Text)
}

func TestCollections(t *testing.T) {
	store := OpenInMemory()
	defer store.Close()
	ctx := context.Background()

	assert.Empty(t, store.Collections())

	require.NoError(t, store.Upsert(ctx, "collection_b", seedRecords()[:1]))
	require.NoError(t, store.Upsert(ctx, "collection_a", seedRecords()[:1]))

	assert.Equal(t, []string{"collection_a", "collection_b"}, store.Collections())
}

func TestClosedStoreRejectsCalls(t *testing.T) {
	store := OpenInMemory()
	require.NoError(t, store.Close())

	err := store.Upsert(context.Background(), "c", seedRecords())
	assert.ErrorIs(t, err, vectorstore.ErrStoreClosed)

	_, err = store.Search(context.Background(), "c", []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, vectorstore.ErrStoreClosed)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, "kept", seedRecords()))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	matches, err := reopened.Search(ctx, "kept", []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ID)
}

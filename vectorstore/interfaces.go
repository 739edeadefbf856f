package vectorstore

import "context"

// Record is one embedded segment persisted to a collection.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// Match is a similarity search result. Similarity is cosine similarity in
// [-1, 1]; higher is better. Implementations backed by distance-based engines
// must convert so this convention holds.
type Match struct {
	ID         string
	Text       string
	Metadata   map[string]string
	Similarity float32
}

// Store provides named, independent collections of embedded segments.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Upsert writes records into the named collection, creating it when
	// missing. Records with an existing ID are overwritten.
	Upsert(ctx context.Context, collection string, records []Record) error

	// Search returns up to k matches from the named collection, ordered by
	// similarity (highest first). Returns ErrCollectionNotFound when the
	// collection does not exist.
	Search(ctx context.Context, collection string, embedding []float32, k int) ([]Match, error)

	// Collections lists the collection names present in the store.
	Collections() []string

	// Close releases the store's resources.
	Close() error
}

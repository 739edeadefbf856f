package profile

import "context"

// Registry tracks which vector store collections belong to which user.
// Implementations must be thread-safe and support concurrent access.
type Registry interface {
	// AppendCollection records a collection as belonging to a user.
	// Creates the user entry on first use. Appending a collection the
	// user already owns is a no-op.
	AppendCollection(ctx context.Context, userID, collection string) error

	// Collections returns the collections owned by a user, in the order
	// they were ingested. An unknown user yields an empty list, not an
	// error.
	Collections(ctx context.Context, userID string) ([]string, error)

	// Users returns the IDs of all users with at least one collection.
	Users(ctx context.Context) ([]string, error)

	// Close closes the registry and releases resources.
	Close() error
}

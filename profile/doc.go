// Package profile stores the per-user ingestion registry.
//
// Every successful ingestion produces one vector store collection. The
// registry remembers which collections a user has accumulated so that a
// later question can be answered against all of them. Entries are
// append-only: collections are never removed from a user, matching the
// append-only document history of the system.
//
// The badger subpackage provides the persistent implementation.
package profile

// Package vectorstore defines the vector index abstraction for recall.
//
// A Store holds named, independent collections of embedded text segments and
// answers similarity queries against them. The interface is deliberately
// small: ingestion only upserts, retrieval only searches, and collection
// membership (which user owns which collection) lives elsewhere, in the
// profile registry.
//
// # Constructor Return Type Pattern
//
// Implementation packages return the Store interface from their public
// constructors so consumers never couple to a specific engine:
//
//	store, err := chromem.Open(path)  // returns vectorstore.Store
//
// # Score Convention
//
// Match.Similarity is cosine similarity, higher-is-better. Threshold
// comparisons throughout the query pipeline rely on this direction; an
// implementation backed by a distance-based engine must invert before
// returning.
package vectorstore

// Package ingest implements the document ingestion pipeline.
//
// An ingestion takes a batch of documents, splits them into overlapping
// segments, embeds every segment, writes the embedded segments into a
// fresh vector store collection, and finally records the collection
// against the owning user in the profile registry. Embedding calls go
// through retry with exponential backoff since they cross a network
// boundary.
package ingest

// Package source provides the document adapters the ingestion pipeline
// reads from.
//
// Three adapters are supported:
//
//   - File: local .txt, .md, .pdf and .docx files
//   - Endpoint: an HTTP URL returning text or a JSON array
//   - Mongo: a MongoDB collection, optionally narrowed by a filter
//
// Adapters normalize everything into core.Document values carrying the
// raw text plus provenance metadata. Failures are wrapped in the core
// sentinel errors; Collect absorbs them so a single unreachable source
// never aborts a batch.
package source

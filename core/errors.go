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


package core

import "errors"

// Error kinds for the ingestion and query pipelines. Callers branch on these
// with errors.Is rather than matching message strings.
var (
	// ErrSourceUnavailable indicates a source could not be reached or read.
	// Adapters absorb this kind: they log it and return no documents.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnsupportedFormat indicates a file extension with no registered parser.
	// Absorbed like ErrSourceUnavailable; the file contributes nothing.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmbeddingFailed indicates the embedding provider rejected or failed
	// a request. Fatal to the ingestion call: nothing is stored.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStoreFailed indicates the vector store rejected an upsert.
	// Fatal to the ingestion call: the collection must not be registered.
	ErrStoreFailed = errors.New("vector store write failed")

	// ErrRetrievalFailed indicates malformed retrieval input. Connectivity
	// loss at query time degrades to an empty context instead.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrExternalTimeout indicates an external call exceeded its deadline.
	ErrExternalTimeout = errors.New("external call timed out")
)

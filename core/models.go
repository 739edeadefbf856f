package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Metadata keys attached to documents as they move through the pipelines.
const (
	MetaSource     = "source"     // file path, endpoint URL, or database collection
	MetaIndex      = "index"      // positional index for list-shaped endpoint payloads
	MetaCollection = "collection" // originating database collection
	MetaChunk      = "chunk"      // ordinal of a segment within its batch
	MetaBatch      = "batch"      // vector-store collection a segment was indexed into
)

// Document is a unit of text pulled from a source, with provenance metadata.
// Adapters always set MetaSource. A Document is not modified after creation.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Segment is a Document after chunking: bounded in length by the splitter's
// chunk size, sharing the configured overlap with its neighbors. Segments
// additionally carry MetaChunk with their ordinal position.
type Segment = Document

// HashContent generates a deterministic 64-bit hash from text content using
// BLAKE2b. Identical content produces identical hashes; used to deduplicate
// segments and retrieval candidates.
func HashContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// QueryState is the ephemeral working record for a single query. It is
// threaded through retrieval and generation; History is the caller's
// conversation so far and comes back extended by one Turn.
type QueryState struct {
	Question string
	Context  string
	Answer   string
	History  []Turn
}

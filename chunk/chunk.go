package chunk

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/recall/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Default splitting parameters, sized for embedding models with modest
// context windows.
const (
	DefaultSize    = 500
	DefaultOverlap = 100
)

// Splitter cuts a batch of documents into bounded, overlapping segments.
//
// Policy: all document contents in a batch are concatenated (newline-joined)
// into one combined text before splitting, so a batch is treated as a single
// body of knowledge and per-document boundaries inside the batch are
// deliberately discarded. The recursive splitter prefers paragraph breaks,
// then sentence breaks, then arbitrary character positions, carrying Overlap
// characters across each cut.
type Splitter struct {
	size        int
	overlap     int
	deduplicate bool
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithDeduplicate drops segments whose content repeats an earlier segment
// in the same batch.
func WithDeduplicate() Option {
	return func(s *Splitter) {
		s.deduplicate = true
	}
}

// NewSplitter creates a splitter with validated parameters.
func NewSplitter(size, overlap int, opts ...Option) (*Splitter, error) {
	if size <= 0 {
		return nil, errors.New("chunk: size must be greater than zero")
	}
	if overlap < 0 {
		return nil, errors.New("chunk: overlap cannot be negative")
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk: overlap %d must be smaller than size %d", overlap, size)
	}
	s := &Splitter{size: size, overlap: overlap}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split cuts the documents into segments. An empty input produces an empty
// output, never an error. Each segment carries MetaChunk with its ordinal
// position; MetaSource is kept only when every input document agrees on it.
func (s *Splitter) Split(docs []core.Document) ([]core.Segment, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Content != "" {
			contents = append(contents, doc.Content)
		}
	}
	combined := strings.TrimSpace(strings.Join(contents, "\n"))
	if combined == "" {
		return nil, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.size),
		textsplitter.WithChunkOverlap(s.overlap),
	)
	pieces, err := splitter.SplitText(combined)
	if err != nil {
		return nil, fmt.Errorf("chunk: split batch: %w", err)
	}

	source := commonSource(docs)
	seen := make(map[uint64]struct{})
	segments := make([]core.Segment, 0, len(pieces))
	for _, piece := range pieces {
		text := strings.TrimSpace(piece)
		if text == "" {
			continue
		}
		if s.deduplicate {
			h := core.HashContent(text)
			if _, exists := seen[h]; exists {
				continue
			}
			seen[h] = struct{}{}
		}
		meta := map[string]string{
			core.MetaChunk: strconv.Itoa(len(segments)),
		}
		if source != "" {
			meta[core.MetaSource] = source
		}
		segments = append(segments, core.Segment{Content: text, Metadata: meta})
	}
	return segments, nil
}

// commonSource returns the source tag shared by every document in the batch,
// or "" when the documents disagree or carry none.
func commonSource(docs []core.Document) string {
	source := ""
	for i, doc := range docs {
		got := doc.Metadata[core.MetaSource]
		if i == 0 {
			source = got
			continue
		}
		if got != source {
			return ""
		}
	}
	return source
}

package source

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/core"
)

// Source is a place documents can be pulled from for ingestion.
// Implementations cover local files, HTTP endpoints, and MongoDB
// collections.
type Source interface {
	// Name identifies the source in logs and diagnostics (a path, a
	// URL, a connection target).
	Name() string

	// Load fetches the source's documents. Load wraps failures in the
	// core sentinels: core.ErrSourceUnavailable when the source cannot
	// be reached or read, core.ErrUnsupportedFormat when the content
	// type is not handled.
	Load(ctx context.Context) ([]core.Document, error)
}

// Collect loads every source and merges the results, preserving source
// order. A source that fails is logged and skipped rather than aborting
// the whole batch, so one bad file or unreachable endpoint does not sink
// an ingestion.
func Collect(ctx context.Context, sources ...Source) []core.Document {
	logger := slog.Default().With("component", "source")

	var docs []core.Document
	for _, src := range sources {
		loaded, err := src.Load(ctx)
		if err != nil {
			logger.Warn("skipping source", "source", src.Name(), "error", err)
			continue
		}
		docs = append(docs, loaded...)
	}
	return docs
}

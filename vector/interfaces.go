package vector

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// Backend is the capability a vector search backend provides to the indexing
// orchestrator. Implementations must be thread-safe: batches for different
// (type, field) pairs are submitted concurrently.
type Backend interface {
	// CreateIndex ensures a vector index exists for the (typeName, fieldName)
	// pair. Creation is idempotent: an already existing index is not an
	// error. Callers are still expected to avoid redundant calls within one
	// indexing run.
	CreateIndex(ctx context.Context, typeName, fieldName string) error

	// BatchSize returns the maximum number of objects accepted per
	// SubmitBatch call. Always positive.
	BatchSize() int

	// SubmitBatch embeds and persists one batch of objects under the
	// (typeName, fieldName) index. Each object arrives narrowed to that
	// single index field. The index must already exist.
	SubmitBatch(ctx context.Context, typeName, fieldName string, objects []*core.KnowledgeObject) error
}

// Searcher finds embedded objects similar to a query vector within one
// (type, field) index.
type Searcher interface {
	// FindSimilar returns matches with similarity >= minSimilarity, up to
	// limit results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, typeName, fieldName string, vector []float32, minSimilarity float32, limit int) ([]*core.IndexMatch, error)
}

package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/graph"
	"github.com/poiesic/indexit/index"
	"github.com/poiesic/indexit/storage"
	"github.com/poiesic/indexit/vector"
)

// Pipeline orchestrates the ingestion of knowledge object graphs.
type Pipeline struct {
	objects      storage.ObjectRepository
	orchestrator *index.Orchestrator
	flattener    *graph.Flattener
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(objects storage.ObjectRepository, backend vector.Backend, opts ...Option) (*Pipeline, error) {
	if objects == nil {
		return nil, ErrObjectRepositoryRequired
	}
	if backend == nil {
		return nil, ErrBackendRequired
	}

	p := &Pipeline{
		objects:   objects,
		flattener: graph.NewFlattener(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	orchestrator, err := index.NewOrchestrator(backend, index.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	p.orchestrator = orchestrator

	return p, nil
}

// Ingest validates the root objects, flattens their graphs into a
// deduplicated list, persists every reachable object, and submits them
// for vector indexing. Returns the flattened objects.
//
// Persisting happens before indexing, so a failed indexing run leaves the
// objects stored and re-indexable.
func (p *Pipeline) Ingest(ctx context.Context, roots ...*core.KnowledgeObject) ([]*core.KnowledgeObject, error) {
	for _, root := range roots {
		if root == nil {
			continue
		}
		if err := core.ValidateKnowledgeObject(root); err != nil {
			return nil, fmt.Errorf("validating %s %d: %w", root.TypeName, root.Id, err)
		}
	}

	flattened := p.flattener.FlattenAll(roots)
	if len(flattened) == 0 {
		return nil, nil
	}

	p.logger.Info("ingesting objects", "roots", len(roots), "flattened", len(flattened))

	if _, err := p.objects.AddObjects(ctx, flattened...); err != nil {
		return nil, fmt.Errorf("storing objects: %w", err)
	}

	if err := p.orchestrator.IndexAll(ctx, flattened); err != nil {
		return flattened, fmt.Errorf("indexing objects: %w", err)
	}

	return flattened, nil
}

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


package indexit

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/openai"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ingestion"
	"github.com/poiesic/indexit/storage"
	"github.com/poiesic/indexit/storage/badger"
	"github.com/poiesic/indexit/vector"
)

// Database bundles the storage backend, vector store, embedder, and
// ingestion pipeline behind one handle.
type Database struct {
	backend  *badger.Backend
	objects  storage.ObjectRepository
	vectors  *badger.VectorStore
	embedder ai.Embedder
	pipeline *ingestion.Pipeline
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	embedder   ai.Embedder
	inMemory   bool
	batchSize  int
	maxRetries int
	retryDelay time.Duration
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder supplies an embedder directly, bypassing the AI config.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the backing store in memory, for tests and
// short-lived runs.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithBatchSize sets the vector store batch size.
func WithBatchSize(size int) DatabaseOption {
	return func(o *databaseOptions) {
		o.batchSize = size
	}
}

// WithMaxRetries sets how many times failed embedding calls are attempted.
func WithMaxRetries(retries int) DatabaseOption {
	return func(o *databaseOptions) {
		o.maxRetries = retries
	}
}

// WithRetryDelay sets the initial backoff delay between embedding attempts.
func WithRetryDelay(delay time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.retryDelay = delay
	}
}

// NewDatabase opens a database at the given path and wires up the
// embedding and indexing components.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	objects, err := badger.NewObjectRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var storeOpts []badger.VectorStoreOption
	if options.batchSize > 0 {
		storeOpts = append(storeOpts, badger.WithBatchSize(options.batchSize))
	}
	if options.maxRetries > 0 {
		storeOpts = append(storeOpts, badger.WithMaxRetries(options.maxRetries))
	}
	if options.retryDelay > 0 {
		storeOpts = append(storeOpts, badger.WithRetryDelay(options.retryDelay))
	}
	vectors, err := badger.NewVectorStore(backend, embedder, storeOpts...)
	if err != nil {
		objects.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(objects, vectors)
	if err != nil {
		vectors.Close()
		objects.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		objects:  objects,
		vectors:  vectors,
		embedder: embedder,
		pipeline: pipeline,
		logger:   slog.Default(),
	}, nil
}

// Close closes the database and releases resources.
func (db *Database) Close() error {
	if err := db.vectors.Close(); err != nil {
		db.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := db.objects.Close(); err != nil {
		db.logger.Error("error closing object repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Ingest flattens, stores, and indexes the given root objects.
// Returns the flattened objects.
func (db *Database) Ingest(ctx context.Context, roots ...*core.KnowledgeObject) ([]*core.KnowledgeObject, error) {
	return db.pipeline.Ingest(ctx, roots...)
}

// Search embeds the query text and finds similar records in the
// (typeName, fieldName) index.
func (db *Database) Search(ctx context.Context, typeName, fieldName, query string, minSimilarity float32, limit int) ([]*core.IndexMatch, error) {
	queryVector, err := db.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	queryVector = vector.NormalizeVector(queryVector)
	return db.vectors.FindSimilar(ctx, typeName, fieldName, queryVector, minSimilarity, limit)
}

// ObjectRepository returns the object repository.
func (db *Database) ObjectRepository() storage.ObjectRepository {
	return db.objects
}

// VectorStore returns the vector store.
func (db *Database) VectorStore() *badger.VectorStore {
	return db.vectors
}

// Pipeline returns the ingestion pipeline.
func (db *Database) Pipeline() *ingestion.Pipeline {
	return db.pipeline
}

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


package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
	"github.com/poiesic/indexit/vector"
)

const (
	defaultBatchSize  = 100
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

// VectorStore implements vector.Backend and vector.Searcher on BadgerDB.
//
// Indexes are tracked in a manifest: one IndexDescriptor per (type, field).
// SubmitBatch embeds the index field of each object via the configured
// ai.Embedder and persists the resulting EmbeddedRecords under the index's
// key prefix. Search is a prefix scan with dot-product scoring; vectors are
// normalized on write so the dot product equals cosine similarity.
type VectorStore struct {
	backend    *Backend
	embedder   ai.Embedder
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

var (
	_ vector.Backend  = (*VectorStore)(nil)
	_ vector.Searcher = (*VectorStore)(nil)
)

// VectorStoreOption configures a VectorStore.
type VectorStoreOption func(*VectorStore)

// WithBatchSize sets the maximum number of objects per submitted batch.
func WithBatchSize(size int) VectorStoreOption {
	return func(s *VectorStore) {
		s.batchSize = size
	}
}

// WithMaxRetries sets how many times a failed embedding call is attempted.
func WithMaxRetries(retries int) VectorStoreOption {
	return func(s *VectorStore) {
		s.maxRetries = retries
	}
}

// WithRetryDelay sets the initial backoff delay between embedding attempts.
func WithRetryDelay(delay time.Duration) VectorStoreOption {
	return func(s *VectorStore) {
		s.retryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) VectorStoreOption {
	return func(s *VectorStore) {
		s.logger = logger
	}
}

// NewVectorStore creates a vector store on the given backend and embedder.
func NewVectorStore(backend *Backend, embedder ai.Embedder, opts ...VectorStoreOption) (*VectorStore, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	if embedder == nil {
		return nil, storage.ErrEmbedderRequired
	}

	s := &VectorStore{
		backend:    backend,
		embedder:   embedder,
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BatchSize returns the maximum number of objects per batch.
func (s *VectorStore) BatchSize() int {
	return s.batchSize
}

// CreateIndex creates the index for (typeName, fieldName) if it does not
// already exist. Creating an existing index is a no-op.
func (s *VectorStore) CreateIndex(ctx context.Context, typeName, fieldName string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIndexManifestKey(typeName, fieldName)

		_, err := tx.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		desc := &core.IndexDescriptor{
			TypeName:  typeName,
			FieldName: fieldName,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Set(key, storage.MarshalIndexDescriptor(desc)); err != nil {
			return err
		}

		s.logger.Info("created vector index", "type", typeName, "field", fieldName)
		return tx.Commit()
	}, true)
}

// SubmitBatch embeds the index field of each object and persists the
// resulting records. The index must have been created first.
func (s *VectorStore) SubmitBatch(ctx context.Context, typeName, fieldName string, objects []*core.KnowledgeObject) error {
	if len(objects) == 0 {
		return nil
	}

	exists, err := s.indexExists(typeName, fieldName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s.%s", vector.ErrIndexNotFound, typeName, fieldName)
	}

	texts := make([]string, len(objects))
	for i, obj := range objects {
		value, _ := obj.Field(fieldName)
		texts[i] = core.TextValue(value)
	}

	var vectors [][]float32
	err = vector.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = s.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, s.maxRetries, s.retryDelay)
	if err != nil {
		return fmt.Errorf("embedding batch for %s.%s: %w", typeName, fieldName, err)
	}

	if len(vectors) != len(objects) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(objects))
	}

	now := time.Now().UTC()
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		for i, obj := range objects {
			record := &core.EmbeddedRecord{
				ObjectId:   obj.Id,
				TypeName:   typeName,
				FieldName:  fieldName,
				Text:       texts[i],
				Vector:     vector.NormalizeVector(vectors[i]),
				InsertedAt: now,
			}
			key := makeVectorRecordKey(typeName, fieldName, obj.Id)
			if err := tx.Set(key, storage.MarshalEmbeddedRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.logger.Debug("persisted embedded batch",
		"type", typeName, "field", fieldName, "count", len(objects))
	return nil
}

// FindSimilar finds records in the (typeName, fieldName) index similar to
// the given vector. Returns matches with similarity >= minSimilarity, up
// to limit results, highest score first.
func (s *VectorStore) FindSimilar(ctx context.Context, typeName, fieldName string, queryVector []float32, minSimilarity float32, limit int) ([]*core.IndexMatch, error) {
	exists, err := s.indexExists(typeName, fieldName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s.%s", vector.ErrIndexNotFound, typeName, fieldName)
	}

	var results []*core.IndexMatch
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialVectorKey(typeName, fieldName)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddedRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddedRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			similarity := vector.DotProduct(queryVector, record.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.IndexMatch{
					ObjectId:  record.ObjectId,
					TypeName:  record.TypeName,
					FieldName: record.FieldName,
					Text:      record.Text,
					Score:     similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.IndexMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// ListIndexes returns the descriptors of every created index.
func (s *VectorStore) ListIndexes(ctx context.Context) ([]*core.IndexDescriptor, error) {
	var results []*core.IndexDescriptor
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(indexManifestPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var desc *core.IndexDescriptor
			err := iter.Item().Value(func(val []byte) error {
				var err error
				desc, err = storage.UnmarshalIndexDescriptor(val)
				return err
			})
			if err != nil {
				return err
			}
			if desc != nil {
				results = append(results, desc)
			}
		}
		return nil
	}, false)
	return results, err
}

// Close releases resources. VectorStore has no resources to release.
func (s *VectorStore) Close() error {
	return nil
}

func (s *VectorStore) indexExists(typeName, fieldName string) (bool, error) {
	var exists bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeIndexManifestKey(typeName, fieldName))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	}, false)
	return exists, err
}

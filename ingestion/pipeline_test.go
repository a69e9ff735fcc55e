package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/indexit/ai/mock"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage/badger"
	vecmock "github.com/poiesic/indexit/vector/mock"
)

func newTestPipeline(t *testing.T, backend *vecmock.MockBackend) (*Pipeline, func()) {
	t.Helper()

	objects, vectors, store, err := badger.NewMemoryStores(aimock.NewMockEmbedder())
	require.NoError(t, err)

	pipeline, err := NewPipeline(objects, backend)
	require.NoError(t, err)

	return pipeline, func() {
		vectors.Close()
		objects.Close()
		store.Close()
	}
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires object repository", func(t *testing.T) {
		_, err := NewPipeline(nil, vecmock.NewMockBackend())
		assert.ErrorIs(t, err, ErrObjectRepositoryRequired)
	})

	t.Run("requires backend", func(t *testing.T) {
		objects, vectors, store, err := badger.NewMemoryStores(aimock.NewMockEmbedder())
		require.NoError(t, err)
		defer func() { vectors.Close(); objects.Close(); store.Close() }()

		_, err = NewPipeline(objects, nil)
		assert.ErrorIs(t, err, ErrBackendRequired)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("flattens stores and indexes a graph", func(t *testing.T) {
		backend := vecmock.NewMockBackend()
		pipeline, cleanup := newTestPipeline(t, backend)
		defer cleanup()

		engine := &core.KnowledgeObject{
			Id:       10,
			TypeName: "Engine",
			Fields: []core.Field{
				{Name: "model", Value: "V8"},
			},
			IndexFields: []string{"model"},
		}
		car := &core.KnowledgeObject{
			Id:       1,
			TypeName: "Car",
			Fields: []core.Field{
				{Name: "name", Value: "Roadster"},
				{Name: "engine", Value: engine},
			},
			IndexFields: []string{"name"},
		}

		flattened, err := pipeline.Ingest(ctx, car)
		require.NoError(t, err)
		require.Len(t, flattened, 2)

		// Children are emitted before their container.
		assert.Equal(t, core.ID(10), flattened[0].Id)
		assert.Equal(t, core.ID(1), flattened[1].Id)

		// Both objects were persisted.
		stored, err := pipeline.objects.GetObjects(ctx, 1, 10)
		require.NoError(t, err)
		assert.Len(t, stored, 2)

		// Both index groups were created and submitted.
		calls := backend.CreateIndexCalls()
		assert.Len(t, calls, 2)
		assert.Contains(t, calls, vecmock.IndexKey{TypeName: "Engine", FieldName: "model"})
		assert.Contains(t, calls, vecmock.IndexKey{TypeName: "Car", FieldName: "name"})
		assert.Len(t, backend.Batches(), 2)
	})

	t.Run("deduplicates aliased objects", func(t *testing.T) {
		backend := vecmock.NewMockBackend()
		pipeline, cleanup := newTestPipeline(t, backend)
		defer cleanup()

		shared := &core.KnowledgeObject{Id: 5, TypeName: "Tag"}
		a := &core.KnowledgeObject{
			Id:       1,
			TypeName: "Note",
			Fields:   []core.Field{{Name: "tag", Value: shared}},
		}
		b := &core.KnowledgeObject{
			Id:       2,
			TypeName: "Note",
			Fields:   []core.Field{{Name: "tag", Value: shared}},
		}

		flattened, err := pipeline.Ingest(ctx, a, b)
		require.NoError(t, err)
		assert.Len(t, flattened, 3)
	})

	t.Run("handles cyclic graphs", func(t *testing.T) {
		backend := vecmock.NewMockBackend()
		pipeline, cleanup := newTestPipeline(t, backend)
		defer cleanup()

		person := &core.KnowledgeObject{Id: 1, TypeName: "Person"}
		car := &core.KnowledgeObject{
			Id:       2,
			TypeName: "Car",
			Fields:   []core.Field{{Name: "owner", Value: person}},
		}
		person.Fields = []core.Field{{Name: "cars", Value: []*core.KnowledgeObject{car}}}

		flattened, err := pipeline.Ingest(ctx, person)
		require.NoError(t, err)
		assert.Len(t, flattened, 2)
	})

	t.Run("rejects invalid roots", func(t *testing.T) {
		backend := vecmock.NewMockBackend()
		pipeline, cleanup := newTestPipeline(t, backend)
		defer cleanup()

		_, err := pipeline.Ingest(ctx, &core.KnowledgeObject{TypeName: "Person"})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrMissingID)
		assert.Empty(t, backend.Batches())
	})

	t.Run("empty ingest is a no-op", func(t *testing.T) {
		backend := vecmock.NewMockBackend()
		pipeline, cleanup := newTestPipeline(t, backend)
		defer cleanup()

		flattened, err := pipeline.Ingest(ctx)
		require.NoError(t, err)
		assert.Nil(t, flattened)
	})

	t.Run("indexing failure still returns flattened objects", func(t *testing.T) {
		backend := vecmock.NewMockBackend()
		backend.SubmitBatchFunc = func(ctx context.Context, typeName, fieldName string, objects []*core.KnowledgeObject) error {
			return assert.AnError
		}
		pipeline, cleanup := newTestPipeline(t, backend)
		defer cleanup()

		obj := &core.KnowledgeObject{
			Id:          1,
			TypeName:    "Note",
			Fields:      []core.Field{{Name: "body", Value: "hello"}},
			IndexFields: []string{"body"},
		}

		flattened, err := pipeline.Ingest(ctx, obj)
		require.Error(t, err)
		assert.Len(t, flattened, 1)

		// The object is stored even though indexing failed.
		stored, getErr := pipeline.objects.GetObject(ctx, 1)
		require.NoError(t, getErr)
		assert.Equal(t, "Note", stored.TypeName)
	})
}

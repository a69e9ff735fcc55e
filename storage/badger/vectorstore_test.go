package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/indexit/ai/mock"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/vector"
)

func makeNote(id core.ID, body string) *core.KnowledgeObject {
	return &core.KnowledgeObject{
		Id:       id,
		TypeName: "Note",
		Fields: []core.Field{
			{Name: "body", Value: body},
		},
		IndexFields: []string{"body"},
	}
}

func TestCreateIndexIdempotent(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	ctx := context.Background()

	if err := vectors.CreateIndex(ctx, "Note", "body"); err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}
	if err := vectors.CreateIndex(ctx, "Note", "body"); err != nil {
		t.Fatalf("Second create should be a no-op: %v", err)
	}

	indexes, err := vectors.ListIndexes(ctx)
	if err != nil {
		t.Fatalf("Failed to list indexes: %v", err)
	}
	if len(indexes) != 1 {
		t.Fatalf("Expected 1 index, got %d", len(indexes))
	}
	if indexes[0].TypeName != "Note" || indexes[0].FieldName != "body" {
		t.Fatalf("Unexpected index descriptor: %+v", indexes[0])
	}
	if indexes[0].CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}
}

func TestSubmitBatchRequiresIndex(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	err = vectors.SubmitBatch(context.Background(), "Note", "body",
		[]*core.KnowledgeObject{makeNote(1, "hello")})
	if !errors.Is(err, vector.ErrIndexNotFound) {
		t.Fatalf("Expected ErrIndexNotFound, got %v", err)
	}
}

func TestSubmitBatchAndSearch(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	ctx := context.Background()

	if err := vectors.CreateIndex(ctx, "Note", "body"); err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	notes := []*core.KnowledgeObject{
		makeNote(1, "the weather is sunny today"),
		makeNote(2, "grocery list: milk and eggs"),
		makeNote(3, "the weather is sunny today"),
	}
	if err := vectors.SubmitBatch(ctx, "Note", "body", notes); err != nil {
		t.Fatalf("Failed to submit batch: %v", err)
	}

	// The mock embedder is deterministic, so an identical query vector
	// scores 1.0 against notes with the same text.
	embedder := mock.NewMockEmbedder()
	query, err := embedder.EmbedText(ctx, "the weather is sunny today")
	if err != nil {
		t.Fatalf("Failed to embed query: %v", err)
	}
	query = vector.NormalizeVector(query)

	matches, err := vectors.FindSimilar(ctx, "Note", "body", query, 0.99, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Text != "the weather is sunny today" {
			t.Fatalf("Unexpected match text: %q", m.Text)
		}
	}
}

func TestFindSimilarLimitAndOrder(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	ctx := context.Background()

	if err := vectors.CreateIndex(ctx, "Note", "body"); err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	var notes []*core.KnowledgeObject
	for i := 1; i <= 5; i++ {
		notes = append(notes, makeNote(core.ID(i), fmt.Sprintf("note number %d", i)))
	}
	if err := vectors.SubmitBatch(ctx, "Note", "body", notes); err != nil {
		t.Fatalf("Failed to submit batch: %v", err)
	}

	embedder := mock.NewMockEmbedder()
	query, err := embedder.EmbedText(ctx, "note number 3")
	if err != nil {
		t.Fatalf("Failed to embed query: %v", err)
	}
	query = vector.NormalizeVector(query)

	matches, err := vectors.FindSimilar(ctx, "Note", "body", query, -1.0, 3)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("Expected limit of 3 matches, got %d", len(matches))
	}

	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatalf("Expected descending scores, got %v then %v",
				matches[i-1].Score, matches[i].Score)
		}
	}
	if matches[0].ObjectId != 3 {
		t.Fatalf("Expected best match to be object 3, got %d", matches[0].ObjectId)
	}
}

func TestFindSimilarUnknownIndex(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	_, err = vectors.FindSimilar(context.Background(), "Note", "body", []float32{1}, 0, 10)
	if !errors.Is(err, vector.ErrIndexNotFound) {
		t.Fatalf("Expected ErrIndexNotFound, got %v", err)
	}
}

func TestSubmitBatchRetriesEmbedding(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient failure")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	_, vectors, backend, err := NewMemoryStores(embedder)
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	// Speed up retries for the test
	vectors.maxRetries = 3
	vectors.retryDelay = time.Millisecond

	ctx := context.Background()
	if err := vectors.CreateIndex(ctx, "Note", "body"); err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	if err := vectors.SubmitBatch(ctx, "Note", "body", []*core.KnowledgeObject{makeNote(1, "hi")}); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected 3 embedding attempts, got %d", calls)
	}
}

func TestSubmitBatchCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	_, vectors, backend, err := NewMemoryStores(embedder)
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); backend.Close() }()

	vectors.retryDelay = time.Millisecond

	ctx := context.Background()
	if err := vectors.CreateIndex(ctx, "Note", "body"); err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}

	err = vectors.SubmitBatch(ctx, "Note", "body",
		[]*core.KnowledgeObject{makeNote(1, "a"), makeNote(2, "b")})
	if err == nil {
		t.Fatal("Expected count mismatch error")
	}
}

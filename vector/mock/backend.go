package mock

import (
	"context"
	"sync"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/vector"
)

// IndexKey identifies one (type, field) index in recorded calls.
type IndexKey struct {
	TypeName  string
	FieldName string
}

// SubmittedBatch is one recorded SubmitBatch call.
type SubmittedBatch struct {
	TypeName  string
	FieldName string
	Objects   []*core.KnowledgeObject
}

// MockBackend is a test double for vector.Backend.
// It allows custom behavior injection via function fields.
type MockBackend struct {
	// CreateIndexFunc is called by CreateIndex if set.
	// If nil, CreateIndex succeeds.
	CreateIndexFunc func(ctx context.Context, typeName, fieldName string) error

	// SubmitBatchFunc is called by SubmitBatch if set.
	// If nil, SubmitBatch succeeds.
	SubmitBatchFunc func(ctx context.Context, typeName, fieldName string, objects []*core.KnowledgeObject) error

	// BatchSizeFunc is called by BatchSize if set.
	// If nil, BatchSize returns 100.
	BatchSizeFunc func() int

	mu          sync.Mutex
	createCalls []IndexKey
	batches     []SubmittedBatch
}

var _ vector.Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock backend with default succeeding behavior.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// CreateIndex records the call, then delegates to CreateIndexFunc if set.
func (m *MockBackend) CreateIndex(ctx context.Context, typeName, fieldName string) error {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, IndexKey{TypeName: typeName, FieldName: fieldName})
	m.mu.Unlock()

	if m.CreateIndexFunc != nil {
		return m.CreateIndexFunc(ctx, typeName, fieldName)
	}
	return nil
}

// BatchSize delegates to BatchSizeFunc if set, defaulting to 100.
func (m *MockBackend) BatchSize() int {
	if m.BatchSizeFunc != nil {
		return m.BatchSizeFunc()
	}
	return 100
}

// SubmitBatch records the call, then delegates to SubmitBatchFunc if set.
func (m *MockBackend) SubmitBatch(ctx context.Context, typeName, fieldName string, objects []*core.KnowledgeObject) error {
	m.mu.Lock()
	m.batches = append(m.batches, SubmittedBatch{TypeName: typeName, FieldName: fieldName, Objects: objects})
	m.mu.Unlock()

	if m.SubmitBatchFunc != nil {
		return m.SubmitBatchFunc(ctx, typeName, fieldName, objects)
	}
	return nil
}

// CreateIndexCalls returns a copy of the recorded CreateIndex calls.
func (m *MockBackend) CreateIndexCalls() []IndexKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]IndexKey, len(m.createCalls))
	copy(out, m.createCalls)
	return out
}

// Batches returns a copy of the recorded SubmitBatch calls.
func (m *MockBackend) Batches() []SubmittedBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SubmittedBatch, len(m.batches))
	copy(out, m.batches)
	return out
}

// Reset clears recorded calls and injected behavior.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls = nil
	m.batches = nil
	m.CreateIndexFunc = nil
	m.SubmitBatchFunc = nil
	m.BatchSizeFunc = nil
}

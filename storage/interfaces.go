package storage

import (
	"context"

	"github.com/poiesic/indexit/core"
)

// ObjectRepository provides operations for managing knowledge objects.
// Implementations must be thread-safe and support concurrent access.
type ObjectRepository interface {
	// AddObjects adds or updates knowledge objects in storage.
	// Objects are keyed by their content-based ID; re-adding an existing
	// object overwrites its fields but preserves the original InsertedAt.
	// Sets InsertedAt on first insert and UpdatedAt on every write.
	// Returns ErrMissingID if any object has a zero ID.
	AddObjects(ctx context.Context, objects ...*core.KnowledgeObject) ([]*core.KnowledgeObject, error)

	// GetObject retrieves a single knowledge object by ID.
	// Object-valued fields come back as core.Ref / []core.Ref; use
	// HydrateObject to resolve them into nested objects.
	// Returns ErrNotFound if the object doesn't exist.
	GetObject(ctx context.Context, id core.ID) (*core.KnowledgeObject, error)

	// GetObjects retrieves multiple knowledge objects by their IDs.
	// Returns only the objects that exist (no error for missing objects).
	GetObjects(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeObject, error)

	// GetAllObjects retrieves every stored knowledge object.
	GetAllObjects(ctx context.Context) ([]*core.KnowledgeObject, error)

	// DeleteObjects removes knowledge objects by their IDs.
	// Returns ErrNotFound if any object doesn't exist.
	DeleteObjects(ctx context.Context, ids ...core.ID) error

	// HydrateObject retrieves an object and recursively resolves its Ref
	// and []Ref field values into *core.KnowledgeObject values. Cyclic
	// references are reconstructed as pointer cycles, not followed forever.
	// Returns ErrNotFound if the object or any referenced object is missing.
	HydrateObject(ctx context.Context, id core.ID) (*core.KnowledgeObject, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
)

// ObjectRepository implements storage.ObjectRepository for BadgerDB.
type ObjectRepository struct {
	backend *Backend
}

var _ storage.ObjectRepository = (*ObjectRepository)(nil)

// NewObjectRepository creates an object repository on the given backend.
//
// Returns storage.ObjectRepository interface to enforce abstraction.
func NewObjectRepository(backend *Backend) (storage.ObjectRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &ObjectRepository{backend: backend}, nil
}

// Close releases resources. ObjectRepository has no resources to release.
func (r *ObjectRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ObjectRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddObjects adds or updates knowledge objects in storage. Objects are
// keyed by ID; re-adding an existing object overwrites it but preserves
// the original InsertedAt.
func (r *ObjectRepository) AddObjects(ctx context.Context, objects ...*core.KnowledgeObject) ([]*core.KnowledgeObject, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, obj := range objects {
			if obj.Id == 0 {
				return fmt.Errorf("%w: type %s", storage.ErrMissingID, obj.TypeName)
			}

			key := makeObjectKey(obj.Id)

			existing, err := readObject(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				obj.InsertedAt = existing.InsertedAt
			} else if obj.InsertedAt.IsZero() {
				obj.InsertedAt = now
			}
			obj.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalKnowledgeObject(obj)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return objects, err
}

// GetObject retrieves a single knowledge object by ID.
func (r *ObjectRepository) GetObject(ctx context.Context, id core.ID) (*core.KnowledgeObject, error) {
	var result *core.KnowledgeObject
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readObject(tx, makeObjectKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetObjects retrieves multiple knowledge objects by their IDs.
// Returns only the objects that exist.
func (r *ObjectRepository) GetObjects(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeObject, error) {
	var result []*core.KnowledgeObject
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			obj, err := readObject(tx, makeObjectKey(id))
			if err != nil {
				return err
			}
			if obj != nil {
				result = append(result, obj)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllObjects retrieves every stored knowledge object.
func (r *ObjectRepository) GetAllObjects(ctx context.Context) ([]*core.KnowledgeObject, error) {
	var results []*core.KnowledgeObject
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(objectRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var obj *core.KnowledgeObject
			err := item.Value(func(val []byte) error {
				var err error
				obj, err = storage.UnmarshalKnowledgeObject(val)
				return err
			})
			if err != nil {
				return err
			}
			if obj != nil {
				results = append(results, obj)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteObjects removes knowledge objects by their IDs.
func (r *ObjectRepository) DeleteObjects(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeObjectKey(id)

			obj, err := readObject(tx, key)
			if err != nil {
				return err
			}
			if obj == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// HydrateObject retrieves an object and recursively resolves its Ref and
// []Ref field values into nested objects. Cyclic reference chains come
// back as pointer cycles.
func (r *ObjectRepository) HydrateObject(ctx context.Context, id core.ID) (*core.KnowledgeObject, error) {
	var result *core.KnowledgeObject
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = hydrate(tx, id, make(map[core.ID]*core.KnowledgeObject))
		return err
	}, false)
	return result, err
}

// hydrate resolves one object and its reference closure. The memo map is
// populated before recursing so cycles terminate.
func hydrate(tx *badger.Txn, id core.ID, memo map[core.ID]*core.KnowledgeObject) (*core.KnowledgeObject, error) {
	if obj, ok := memo[id]; ok {
		return obj, nil
	}

	obj, err := readObject(tx, makeObjectKey(id))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: object %d", storage.ErrNotFound, id)
	}
	memo[id] = obj

	for i, field := range obj.Fields {
		switch val := field.Value.(type) {
		case core.Ref:
			child, err := hydrate(tx, core.ID(val), memo)
			if err != nil {
				return nil, err
			}
			obj.Fields[i].Value = child
		case []core.Ref:
			children := make([]*core.KnowledgeObject, len(val))
			for j, ref := range val {
				child, err := hydrate(tx, core.ID(ref), memo)
				if err != nil {
					return nil, err
				}
				children[j] = child
			}
			obj.Fields[i].Value = children
		}
	}

	return obj, nil
}

// readObject reads a knowledge object from the transaction.
func readObject(tx *badger.Txn, key []byte) (*core.KnowledgeObject, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var obj *core.KnowledgeObject
	err = item.Value(func(val []byte) error {
		var err error
		obj, err = storage.UnmarshalKnowledgeObject(val)
		return err
	})
	return obj, err
}

package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/indexit/ai/mock"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
)

func TestObjectBasics(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	obj := &core.KnowledgeObject{
		Id:       core.IDFromContent("person:ada"),
		TypeName: "Person",
		Fields: []core.Field{
			{Name: "name", Value: "Ada Lovelace"},
		},
		IndexFields: []string{"name"},
	}

	added, err := objects.AddObjects(ctx, obj)
	if err != nil {
		t.Fatalf("Failed to add object: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(added))
	}

	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := objects.GetObject(ctx, obj.Id)
	if err != nil {
		t.Fatalf("Failed to get object: %v", err)
	}

	if retrieved.TypeName != "Person" {
		t.Fatalf("Expected 'Person', got '%s'", retrieved.TypeName)
	}

	value, ok := retrieved.Field("name")
	if !ok || value != "Ada Lovelace" {
		t.Fatalf("Expected name 'Ada Lovelace', got %v", value)
	}
}

func TestObjectMissingID(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	_, err = objects.AddObjects(context.Background(), &core.KnowledgeObject{TypeName: "Person"})
	if !errors.Is(err, storage.ErrMissingID) {
		t.Fatalf("Expected ErrMissingID, got %v", err)
	}
}

func TestObjectUpsertPreservesInsertedAt(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	obj := &core.KnowledgeObject{
		Id:       1,
		TypeName: "Person",
		Fields:   []core.Field{{Name: "name", Value: "Ada"}},
	}

	added, err := objects.AddObjects(ctx, obj)
	if err != nil {
		t.Fatalf("Failed to add object: %v", err)
	}
	inserted := added[0].InsertedAt

	updated := &core.KnowledgeObject{
		Id:       1,
		TypeName: "Person",
		Fields:   []core.Field{{Name: "name", Value: "Ada Lovelace"}},
	}
	if _, err := objects.AddObjects(ctx, updated); err != nil {
		t.Fatalf("Failed to re-add object: %v", err)
	}

	retrieved, err := objects.GetObject(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get object: %v", err)
	}

	if !retrieved.InsertedAt.Equal(inserted) {
		t.Fatalf("Expected InsertedAt %v to be preserved, got %v", inserted, retrieved.InsertedAt)
	}

	value, _ := retrieved.Field("name")
	if value != "Ada Lovelace" {
		t.Fatalf("Expected updated name, got %v", value)
	}
}

func TestGetObjects(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	for i := core.ID(1); i <= 3; i++ {
		obj := &core.KnowledgeObject{Id: i, TypeName: "Note"}
		if _, err := objects.AddObjects(ctx, obj); err != nil {
			t.Fatalf("Failed to add object %d: %v", i, err)
		}
	}

	// Missing IDs are silently skipped
	got, err := objects.GetObjects(ctx, 1, 3, 99)
	if err != nil {
		t.Fatalf("Failed to get objects: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(got))
	}

	all, err := objects.GetAllObjects(ctx)
	if err != nil {
		t.Fatalf("Failed to get all objects: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 objects, got %d", len(all))
	}
}

func TestDeleteObjects(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	obj := &core.KnowledgeObject{Id: 1, TypeName: "Note"}
	if _, err := objects.AddObjects(ctx, obj); err != nil {
		t.Fatalf("Failed to add object: %v", err)
	}

	if err := objects.DeleteObjects(ctx, 1); err != nil {
		t.Fatalf("Failed to delete object: %v", err)
	}

	if _, err := objects.GetObject(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := objects.DeleteObjects(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestHydrateObject(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	engine := &core.KnowledgeObject{Id: 10, TypeName: "Engine"}
	car := &core.KnowledgeObject{
		Id:       1,
		TypeName: "Car",
		Fields: []core.Field{
			{Name: "engine", Value: engine},
		},
	}

	if _, err := objects.AddObjects(ctx, engine, car); err != nil {
		t.Fatalf("Failed to add objects: %v", err)
	}

	// Stored form holds a ref, not the object
	stored, err := objects.GetObject(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get object: %v", err)
	}
	if value, _ := stored.Field("engine"); value != core.Ref(10) {
		t.Fatalf("Expected Ref(10), got %v", value)
	}

	hydrated, err := objects.HydrateObject(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to hydrate object: %v", err)
	}

	value, _ := hydrated.Field("engine")
	child, ok := value.(*core.KnowledgeObject)
	if !ok {
		t.Fatalf("Expected *KnowledgeObject, got %T", value)
	}
	if child.Id != 10 || child.TypeName != "Engine" {
		t.Fatalf("Unexpected hydrated child: %+v", child)
	}
}

func TestHydrateObjectCycle(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	// Person owns cars; each car points back at its owner.
	person := &core.KnowledgeObject{Id: 1, TypeName: "Person"}
	car := &core.KnowledgeObject{
		Id:       2,
		TypeName: "Car",
		Fields: []core.Field{
			{Name: "owner", Value: person},
		},
	}
	person.Fields = []core.Field{
		{Name: "cars", Value: []*core.KnowledgeObject{car}},
	}

	if _, err := objects.AddObjects(ctx, person, car); err != nil {
		t.Fatalf("Failed to add objects: %v", err)
	}

	hydrated, err := objects.HydrateObject(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to hydrate object: %v", err)
	}

	carsVal, _ := hydrated.Field("cars")
	cars, ok := carsVal.([]*core.KnowledgeObject)
	if !ok || len(cars) != 1 {
		t.Fatalf("Expected one hydrated car, got %v", carsVal)
	}

	ownerVal, _ := cars[0].Field("owner")
	if ownerVal != hydrated {
		t.Fatal("Expected cycle to resolve to the same pointer")
	}
}

func TestHydrateObjectDanglingRef(t *testing.T) {
	objects, vectors, backend, err := NewMemoryStores(mock.NewMockEmbedder())
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { vectors.Close(); objects.Close(); backend.Close() }()

	ctx := context.Background()

	obj := &core.KnowledgeObject{
		Id:       1,
		TypeName: "Car",
		Fields: []core.Field{
			{Name: "engine", Value: core.Ref(404)},
		},
	}
	if _, err := objects.AddObjects(ctx, obj); err != nil {
		t.Fatalf("Failed to add object: %v", err)
	}

	if _, err := objects.HydrateObject(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for dangling ref, got %v", err)
	}
}

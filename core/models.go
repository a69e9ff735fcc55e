package core

import (
	"encoding/binary"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or supplied by the caller.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Ref is a persisted reference to another KnowledgeObject by its ID.
// Object-valued fields are stored in this form; HydrateObject resolves
// refs back into nested objects.
type Ref ID

// Field is a single named value of a KnowledgeObject. Field order is
// significant: traversal and serialization walk fields in declared order.
type Field struct {
	Name  string
	Value any
}

// KnowledgeObject is a uniquely identified record with named fields, some of
// which are declared searchable via IndexFields. Field values may be scalars,
// nested *KnowledgeObjects, or ordered sequences of them; all other value
// kinds are inert with respect to graph traversal.
//
// Two objects with the same Id are treated as the same node regardless of the
// path they were reached through.
type KnowledgeObject struct {
	Id          ID
	TypeName    string
	Fields      []Field
	IndexFields []string  // subset of field names declared embeddable
	InsertedAt  time.Time // When the object was inserted into the database
	UpdatedAt   time.Time // When the object was last updated
}

// Field returns the value of the named field and whether it is declared.
func (o *KnowledgeObject) Field(name string) (any, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// HasIndexField reports whether name is declared in IndexFields.
func (o *KnowledgeObject) HasIndexField(name string) bool {
	return slices.Contains(o.IndexFields, name)
}

// IndexValue returns the value of the named index field, treating absent
// fields and null values uniformly: (nil, false) means the field contributes
// nothing to indexing.
func (o *KnowledgeObject) IndexValue(name string) (any, bool) {
	v, ok := o.Field(name)
	if !ok || IsNullValue(v) {
		return nil, false
	}
	return v, true
}

// WithIndexField returns a shallow copy of the object whose IndexFields is
// narrowed to exactly the given field. The copy shares field values with the
// original but owns its IndexFields slice, so downstream mutation of the
// narrowed list never reaches the original.
func (o *KnowledgeObject) WithIndexField(name string) *KnowledgeObject {
	cp := *o
	cp.IndexFields = []string{name}
	return &cp
}

// EmbeddedRecord is one embedded entry persisted in a (type, field) vector
// index.
type EmbeddedRecord struct {
	ObjectId   ID
	TypeName   string
	FieldName  string
	Text       string
	Vector     []float32
	InsertedAt time.Time
}

// IndexDescriptor describes a created (type, field) vector index.
type IndexDescriptor struct {
	TypeName  string
	FieldName string
	CreatedAt time.Time
}

// IndexMatch is a similarity match from a vector index.
type IndexMatch struct {
	ObjectId  ID
	TypeName  string
	FieldName string
	Text      string
	Score     float32
}

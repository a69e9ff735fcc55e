package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/poiesic/indexit/core"
)

// document is the JSON wire form of a knowledge object.
//
// Field values may be scalars, nested documents, {"$ref": "<id>"} objects
// pointing at another document by id, or arrays of these. Nested documents
// are registered under their own id, so a graph can be written either
// inline or as a flat list with refs.
type document struct {
	ID          string                     `json:"id"`
	Type        string                     `json:"type"`
	Fields      map[string]json.RawMessage `json:"fields"`
	IndexFields []string                   `json:"index_fields"`
}

// refPlaceholder holds an unresolved $ref until every document is known.
type refPlaceholder string

// refList holds an unresolved list of values containing refs.
type refList []any

// loader accumulates documents and resolves references between them.
type loader struct {
	objects map[string]*core.KnowledgeObject
	order   []string
}

// LoadDocuments parses knowledge objects from a JSON array of documents.
// Object IDs are derived from the document id string, so re-loading the
// same file yields the same IDs. References are resolved after all
// documents (including inline nested ones) are registered, so a $ref may
// point forward in the file.
func LoadDocuments(r io.Reader) ([]*core.KnowledgeObject, error) {
	var docs []document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("parsing documents: %w", err)
	}

	l := &loader{objects: make(map[string]*core.KnowledgeObject)}

	for _, doc := range docs {
		if _, err := l.register(doc); err != nil {
			return nil, err
		}
	}

	if err := l.resolve(); err != nil {
		return nil, err
	}

	results := make([]*core.KnowledgeObject, len(l.order))
	for i, id := range l.order {
		results[i] = l.objects[id]
	}
	return results, nil
}

// register builds the object for a document and records it by id. Nested
// documents are registered recursively.
func (l *loader) register(doc document) (*core.KnowledgeObject, error) {
	if doc.ID == "" {
		return nil, ErrMissingDocumentID
	}
	if doc.Type == "" {
		return nil, fmt.Errorf("%w: document %q", ErrMissingDocumentType, doc.ID)
	}
	if _, exists := l.objects[doc.ID]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateDocumentID, doc.ID)
	}

	obj := &core.KnowledgeObject{
		Id:          core.IDFromContent(doc.ID),
		TypeName:    doc.Type,
		IndexFields: doc.IndexFields,
	}
	l.objects[doc.ID] = obj
	l.order = append(l.order, doc.ID)

	// Sort field names so loading is deterministic regardless of JSON
	// map iteration order.
	names := make([]string, 0, len(doc.Fields))
	for name := range doc.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, err := l.parseValue(doc.Fields[name])
		if err != nil {
			return nil, fmt.Errorf("document %q field %q: %w", doc.ID, name, err)
		}
		obj.Fields = append(obj.Fields, core.Field{Name: name, Value: value})
	}

	return obj, nil
}

// parseValue converts one JSON field value into its in-memory form.
// References come back as placeholders for the resolve pass.
func (l *loader) parseValue(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '{':
		return l.parseObject(raw)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		values := make(refList, len(items))
		for i, item := range items {
			value, err := l.parseValue(item)
			if err != nil {
				return nil, err
			}
			values[i] = value
		}
		return values, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, err
		}
		if i, err := num.Int64(); err == nil {
			return i, nil
		}
		return num.Float64()
	}
}

// parseObject handles the two object forms: a $ref or an inline document.
func (l *loader) parseObject(raw json.RawMessage) (any, error) {
	var ref struct {
		Ref *string `json:"$ref"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, err
	}
	if ref.Ref != nil {
		return refPlaceholder(*ref.Ref), nil
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return l.register(doc)
}

// resolve replaces every ref placeholder with the registered object.
func (l *loader) resolve() error {
	for _, id := range l.order {
		obj := l.objects[id]
		for i, field := range obj.Fields {
			value, err := l.resolveValue(field.Value)
			if err != nil {
				return fmt.Errorf("document %q field %q: %w", id, field.Name, err)
			}
			obj.Fields[i].Value = value
		}
	}
	return nil
}

func (l *loader) resolveValue(value any) (any, error) {
	switch val := value.(type) {
	case refPlaceholder:
		target, ok := l.objects[string(val)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRef, string(val))
		}
		return target, nil
	case refList:
		resolved := make([]any, len(val))
		for i, item := range val {
			r, err := l.resolveValue(item)
			if err != nil {
				return nil, err
			}
			resolved[i] = r
		}
		return resolved, nil
	}
	return value, nil
}

package core

import (
	"fmt"
	"strconv"
)

// ChildObjects returns the knowledge objects contained in a field value, in
// order. Single objects yield a one-element slice. For untyped sequences the
// first element decides: if it is a knowledge object the sequence is treated
// as an object sequence and non-object elements are skipped, otherwise the
// whole value is inert. All other value kinds yield nil.
func ChildObjects(v any) []*KnowledgeObject {
	switch val := v.(type) {
	case *KnowledgeObject:
		if val == nil {
			return nil
		}
		return []*KnowledgeObject{val}
	case []*KnowledgeObject:
		return val
	case []any:
		if len(val) == 0 {
			return nil
		}
		if _, ok := val[0].(*KnowledgeObject); !ok {
			return nil
		}
		objects := make([]*KnowledgeObject, 0, len(val))
		for _, item := range val {
			if obj, ok := item.(*KnowledgeObject); ok && obj != nil {
				objects = append(objects, obj)
			}
		}
		return objects
	}
	return nil
}

// IsNullValue reports whether a field value counts as absent for indexing.
// Null index fields are skipped, never embedded as null.
func IsNullValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case *KnowledgeObject:
		return val == nil
	}
	return false
}

// TextValue renders a field value as the text submitted for embedding.
// Nil values render as the empty string.
func TextValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

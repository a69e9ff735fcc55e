package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildObjects(t *testing.T) {
	child1 := &KnowledgeObject{Id: 1, TypeName: "Car"}
	child2 := &KnowledgeObject{Id: 2, TypeName: "Car"}

	t.Run("single object", func(t *testing.T) {
		objects := ChildObjects(child1)
		require.Len(t, objects, 1)
		assert.Same(t, child1, objects[0])
	})

	t.Run("nil object pointer", func(t *testing.T) {
		var obj *KnowledgeObject
		assert.Nil(t, ChildObjects(obj))
	})

	t.Run("object slice preserves order", func(t *testing.T) {
		objects := ChildObjects([]*KnowledgeObject{child1, child2})
		require.Len(t, objects, 2)
		assert.Same(t, child1, objects[0])
		assert.Same(t, child2, objects[1])
	})

	t.Run("untyped slice with object first element", func(t *testing.T) {
		objects := ChildObjects([]any{child1, child2})
		require.Len(t, objects, 2)
	})

	t.Run("untyped slice with scalar first element is inert", func(t *testing.T) {
		assert.Nil(t, ChildObjects([]any{"a", child1}))
	})

	t.Run("empty slice is inert", func(t *testing.T) {
		assert.Nil(t, ChildObjects([]any{}))
	})

	t.Run("scalars are inert", func(t *testing.T) {
		assert.Nil(t, ChildObjects("text"))
		assert.Nil(t, ChildObjects(int64(42)))
		assert.Nil(t, ChildObjects(nil))
	})
}

func TestIsNullValue(t *testing.T) {
	assert.True(t, IsNullValue(nil))

	var obj *KnowledgeObject
	assert.True(t, IsNullValue(obj))

	assert.False(t, IsNullValue(""))
	assert.False(t, IsNullValue(int64(0)))
	assert.False(t, IsNullValue(false))
	assert.False(t, IsNullValue(&KnowledgeObject{Id: 1}))
}

func TestTextValue(t *testing.T) {
	assert.Equal(t, "", TextValue(nil))
	assert.Equal(t, "hello", TextValue("hello"))
	assert.Equal(t, "true", TextValue(true))
	assert.Equal(t, "42", TextValue(42))
	assert.Equal(t, "42", TextValue(int64(42)))
	assert.Equal(t, "1.5", TextValue(1.5))
}

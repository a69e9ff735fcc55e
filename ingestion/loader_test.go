package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/indexit/core"
)

func TestLoadDocuments(t *testing.T) {
	t.Run("scalar fields", func(t *testing.T) {
		input := `[
			{
				"id": "person:ada",
				"type": "Person",
				"fields": {
					"name": "Ada Lovelace",
					"age": 36,
					"height": 1.65,
					"active": true,
					"notes": null
				},
				"index_fields": ["name"]
			}
		]`

		objects, err := LoadDocuments(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, objects, 1)

		obj := objects[0]
		assert.Equal(t, core.IDFromContent("person:ada"), obj.Id)
		assert.Equal(t, "Person", obj.TypeName)
		assert.Equal(t, []string{"name"}, obj.IndexFields)

		name, _ := obj.Field("name")
		assert.Equal(t, "Ada Lovelace", name)
		age, _ := obj.Field("age")
		assert.Equal(t, int64(36), age)
		height, _ := obj.Field("height")
		assert.Equal(t, 1.65, height)
		active, _ := obj.Field("active")
		assert.Equal(t, true, active)
		notes, _ := obj.Field("notes")
		assert.Nil(t, notes)
	})

	t.Run("field order is sorted by name", func(t *testing.T) {
		input := `[
			{"id": "a", "type": "T", "fields": {"zebra": 1, "apple": 2, "mango": 3}}
		]`

		objects, err := LoadDocuments(strings.NewReader(input))
		require.NoError(t, err)

		var names []string
		for _, f := range objects[0].Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"apple", "mango", "zebra"}, names)
	})

	t.Run("inline nested documents", func(t *testing.T) {
		input := `[
			{
				"id": "car:1",
				"type": "Car",
				"fields": {
					"engine": {"id": "engine:1", "type": "Engine", "fields": {"model": "V8"}}
				}
			}
		]`

		objects, err := LoadDocuments(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, objects, 2)

		car := objects[0]
		value, _ := car.Field("engine")
		engine, ok := value.(*core.KnowledgeObject)
		require.True(t, ok)
		assert.Equal(t, "Engine", engine.TypeName)

		// The inline document is also returned as a top-level object.
		assert.Same(t, engine, objects[1])
	})

	t.Run("refs resolve forward and backward", func(t *testing.T) {
		input := `[
			{
				"id": "car:1",
				"type": "Car",
				"fields": {"owner": {"$ref": "person:1"}}
			},
			{
				"id": "person:1",
				"type": "Person",
				"fields": {"cars": [{"$ref": "car:1"}]}
			}
		]`

		objects, err := LoadDocuments(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, objects, 2)

		car, person := objects[0], objects[1]

		owner, _ := car.Field("owner")
		assert.Same(t, person, owner)

		carsVal, _ := person.Field("cars")
		cars, ok := carsVal.([]any)
		require.True(t, ok)
		require.Len(t, cars, 1)
		assert.Same(t, car, cars[0])
	})

	t.Run("same ids yield same object ids across loads", func(t *testing.T) {
		input := `[{"id": "stable", "type": "T"}]`

		first, err := LoadDocuments(strings.NewReader(input))
		require.NoError(t, err)
		second, err := LoadDocuments(strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, first[0].Id, second[0].Id)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := LoadDocuments(strings.NewReader(`[{"type": "T"}]`))
		assert.ErrorIs(t, err, ErrMissingDocumentID)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := LoadDocuments(strings.NewReader(`[{"id": "a"}]`))
		assert.ErrorIs(t, err, ErrMissingDocumentType)
	})

	t.Run("duplicate id", func(t *testing.T) {
		input := `[
			{"id": "a", "type": "T"},
			{"id": "a", "type": "T"}
		]`
		_, err := LoadDocuments(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrDuplicateDocumentID)
	})

	t.Run("unknown ref", func(t *testing.T) {
		input := `[
			{"id": "a", "type": "T", "fields": {"other": {"$ref": "missing"}}}
		]`
		_, err := LoadDocuments(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrUnknownRef)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadDocuments(strings.NewReader(`{not json`))
		assert.Error(t, err)
	})
}

package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTotem = New("Totem",
	String("name", Default("")),
	String("description", Optional(), Default("")),
	Float("price", Default(0)),
	Float("tax", Default(10.5)),
	List("tags", String(""), Default([]any{})),
)

func mustValidate(t *testing.T, s *Schema, raw map[string]any) *Instance {
	t.Helper()
	inst, errs := s.Validate(raw)
	require.Empty(t, errs)
	return inst
}

func TestMerge_OnlyTouchedFieldsChange(t *testing.T) {
	stored := mustValidate(t, testTotem, map[string]any{"name": "Bar", "description": "The bartenders", "price": 62, "tax": 20.2})
	update := mustValidate(t, testTotem, map[string]any{"tags": []any{"x"}})

	merged, err := Merge(stored, NewEnvelope(update))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":        "Bar",
		"description": "The bartenders",
		"price":       62.0,
		"tax":         20.2,
		"tags":        []any{"x"},
	}, merged.Dump())
	assert.True(t, merged.IsSet("tags"))
	assert.True(t, merged.IsSet("name"))
}

func TestMerge_DoesNotMutateStored(t *testing.T) {
	stored := mustValidate(t, testTotem, map[string]any{"name": "Foo", "price": 50.2, "tags": []any{"a"}})
	before := stored.Dump()

	update := mustValidate(t, testTotem, map[string]any{"name": "Renamed", "tags": []any{"b"}})
	merged, err := Merge(stored, NewEnvelope(update))
	require.NoError(t, err)

	assert.Equal(t, before, stored.Dump())
	assert.Equal(t, "Renamed", merged.String("name"))

	// The merged value owns its data.
	merged.List("tags")[0] = "changed"
	assert.Equal(t, []any{"b"}, update.List("tags"))
}

func TestMerge_Idempotent(t *testing.T) {
	stored := mustValidate(t, testTotem, map[string]any{"name": "Foo", "price": 50.2})
	env := NewEnvelope(mustValidate(t, testTotem, map[string]any{"price": 1}))

	once, err := Merge(stored, env)
	require.NoError(t, err)
	twice, err := Merge(once, env)
	require.NoError(t, err)

	assert.Equal(t, once.Dump(), twice.Dump())
	assert.Equal(t, once.FieldsSet(), twice.FieldsSet())
}

func TestMerge_EmptyEnvelope(t *testing.T) {
	stored := mustValidate(t, testTotem, map[string]any{"name": "Foo"})
	merged, err := Merge(stored, NewEnvelope(mustValidate(t, testTotem, map[string]any{})))
	require.NoError(t, err)
	assert.Equal(t, stored.Dump(), merged.Dump())
}

func TestMerge_TouchAppliesDefaults(t *testing.T) {
	stored := mustValidate(t, testTotem, map[string]any{"name": "Foo", "tax": 20})
	update := mustValidate(t, testTotem, map[string]any{})

	merged, err := Merge(stored, NewEnvelope(update).Touch("tax"))
	require.NoError(t, err)
	assert.Equal(t, 10.5, merged.Float("tax"))
}

func TestMerge_SchemaMismatch(t *testing.T) {
	stored := mustValidate(t, testTotem, map[string]any{"name": "Foo"})

	other := New("Other", Int("stock", Optional()), Int("price", Optional()))
	update := mustValidate(t, other, map[string]any{"stock": 3})
	_, err := Merge(stored, NewEnvelope(update))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, err.Error(), `field "stock" is not part of Totem`)

	// Same field name, different type.
	retyped := mustValidate(t, other, map[string]any{"price": 3})
	_, err = Merge(stored, NewEnvelope(retyped))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `field "price" is`)
	assert.Contains(t, err.Error(), "in Other but")
}

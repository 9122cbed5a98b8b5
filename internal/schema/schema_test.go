package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testImage = New("Image",
	URL("url"),
	String("name"),
)

var testItem = New("Item",
	String("name"),
	String("description", Optional()),
	Float("price", Gt(0)),
	Float("tax", Optional()),
	Set("tags", String(""), Default([]any{})),
	List("images", Object("", testImage), Optional()),
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var raw any
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestSchemaValidate_CollectsAllErrors(t *testing.T) {
	_, errs := testItem.Validate(decode(t, `{"price": -1, "tags": "nope"}`))
	require.Len(t, errs, 3)

	assert.Equal(t, "name", errs[0].Path())
	assert.Equal(t, KindMissing, errs[0].Kind)
	assert.Equal(t, "price", errs[1].Path())
	assert.Equal(t, KindOutOfRange, errs[1].Kind)
	assert.Equal(t, "tags", errs[2].Path())
	assert.Equal(t, KindTypeMismatch, errs[2].Kind)
}

func TestSchemaValidate_NestedPaths(t *testing.T) {
	_, errs := testItem.Validate(decode(t, `{
		"name": "Foo", "price": 1,
		"images": [{"url": "http://example.com/a.png", "name": "a"}, {"url": "nope", "name": "b"}]
	}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "images.1.url", errs[0].Path())
	assert.Equal(t, []any{"images", 1, "url"}, errs[0].Loc)
}

func TestSchemaValidate_FieldsSetAndDefaults(t *testing.T) {
	inst, errs := testItem.Validate(decode(t, `{"name": "Foo", "price": 35.4, "extra": true}`))
	require.Empty(t, errs)

	assert.Equal(t, []string{"name", "price"}, inst.FieldsSet())
	assert.False(t, inst.IsSet("tags"))
	assert.Equal(t, []any{}, inst.List("tags"))
	assert.Nil(t, inst.Get("description"))
	assert.Equal(t, 35.4, inst.Float("price"))

	assert.Equal(t, map[string]any{"name": "Foo", "price": 35.4}, inst.Dump(ExcludeUnset()))
	assert.Equal(t, map[string]any{"name": "Foo"}, inst.Dump(Include("name", "tags"), ExcludeUnset()))
	assert.NotContains(t, inst.Dump(Exclude("tags")), "tags")
}

func TestSchemaValidate_DefaultsAreNotShared(t *testing.T) {
	a, errs := testItem.Validate(map[string]any{"name": "a", "price": 1})
	require.Empty(t, errs)
	b, errs := testItem.Validate(map[string]any{"name": "b", "price": 1})
	require.Empty(t, errs)

	a.values["tags"] = append(a.List("tags"), "x")
	assert.Empty(t, b.List("tags"))
}

func TestSchemaValidate_NullOnlyForOptional(t *testing.T) {
	inst, errs := testItem.Validate(decode(t, `{"name": "Foo", "price": 1, "description": null}`))
	require.Empty(t, errs)
	assert.True(t, inst.IsSet("description"))

	_, errs = testItem.Validate(decode(t, `{"name": null, "price": 1}`))
	require.Len(t, errs, 1)
	assert.Equal(t, KindTypeMismatch, errs[0].Kind)
}

func TestSchemaValidate_ForbidExtra(t *testing.T) {
	strict := New("Strict", String("name")).ForbidExtra()
	_, errs := strict.Validate(map[string]any{"name": "x", "zeta": 1, "alpha": 2})
	require.Len(t, errs, 2)
	assert.Equal(t, "alpha", errs[0].Path())
	assert.Equal(t, KindExtraForbidden, errs[0].Kind)
	assert.Equal(t, "Extra inputs are not permitted", errs[0].Msg)
}

func TestSchemaValidate_SchemaLevelValidator(t *testing.T) {
	sotem := New("Sotem", String("title"), String("description", Optional())).
		WithValidator("title_not_placeholder", func(i *Instance) error {
			if i.String("title") == "string" {
				return errors.New("title must not be the placeholder")
			}
			return nil
		})

	_, errs := sotem.Validate(map[string]any{"title": "string"})
	require.Len(t, errs, 1)
	assert.Equal(t, KindSchemaCheck, errs[0].Kind)
	assert.Equal(t, "Sotem", errs[0].Entity)
	assert.Empty(t, errs[0].Loc)
	assert.Equal(t, "Value error, Sotem.title_not_placeholder: title must not be the placeholder", errs[0].Msg)

	// Field errors suppress schema-level checks.
	_, errs = sotem.Validate(map[string]any{"description": "x"})
	require.Len(t, errs, 1)
	assert.Equal(t, KindMissing, errs[0].Kind)
}

func TestSchemaValidate_CheckSeesEarlierFields(t *testing.T) {
	rangeSchema := New("Range",
		Int("low"),
		Int("high", Check("above_low", func(v any, sofar Values) error {
			if low, ok := sofar["low"].(int64); ok && v.(int64) <= low {
				return errors.New("high must exceed low")
			}
			return nil
		})),
	)

	_, errs := rangeSchema.Validate(map[string]any{"low": 5, "high": 3})
	require.Len(t, errs, 1)
	assert.Equal(t, "high", errs[0].Path())
	assert.Equal(t, KindPredicate, errs[0].Kind)
}

func TestSchemaValidate_NotAnObject(t *testing.T) {
	_, errs := testItem.Validate([]any{1, 2})
	require.Len(t, errs, 1)
	assert.Equal(t, KindTypeMismatch, errs[0].Kind)
	assert.Empty(t, errs[0].Loc)
}

func TestDuplicateFieldPanics(t *testing.T) {
	assert.Panics(t, func() { New("Dup", String("a"), Int("a")) })
}

func TestInstanceMarshalJSON_DeclarationOrder(t *testing.T) {
	inst, errs := testItem.Validate(map[string]any{"price": 2, "name": "Foo", "tags": []any{"b", "a"}})
	require.Empty(t, errs)

	out, err := json.Marshal(inst)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Foo","description":null,"price":2,"tax":null,"tags":["b","a"],"images":null}`, string(out))
}

func TestErrorMarshalJSON(t *testing.T) {
	e := &Error{Source: "path", Loc: []any{"a"}, Kind: KindOutOfRange, Msg: "Input should be less than or equal to 1000"}
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"loc":["path","a"],"msg":"Input should be less than or equal to 1000","type":"out_of_range"}`, string(out))
}

func TestJSONSchema(t *testing.T) {
	doc := testItem.JSONSchema()
	assert.Equal(t, []string{"name", "price"}, doc["required"])

	props := doc["properties"].(map[string]any)
	price := props["price"].(map[string]any)
	assert.Equal(t, "number", price["type"])
	assert.Equal(t, 0.0, price["exclusiveMinimum"])
	tags := props["tags"].(map[string]any)
	assert.Equal(t, true, tags["uniqueItems"])
}

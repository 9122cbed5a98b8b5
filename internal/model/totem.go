package model

import (
	"errors"

	"github.com/deppfellow/apiplayground/internal/schema"
)

// Totem has a default for every field, so any subset of it is a valid partial update.
var Totem = schema.New("Totem",
	schema.String("name", schema.Default("")),
	schema.String("description", schema.Optional(), schema.Default("")),
	schema.Float("price", schema.Default(0)),
	schema.Float("tax", schema.Default(10.5)),
	schema.List("tags", schema.String(""), schema.Default([]any{})),
)

// TotemSeeds is the initial content of the totem store. Only the listed keys count as set.
var TotemSeeds = map[string]map[string]any{
	"foo": {"name": "Foo", "price": 50.2},
	"bar": {"name": "Bar", "description": "The bartenders", "price": 62, "tax": 20.2},
	"baz": {"name": "Baz", "description": nil, "price": 50.2, "tax": 10.5, "tags": []any{}},
}

// NewTotems is the fixed catalogue served by the new-totems endpoint.
var NewTotems = []map[string]any{
	{"name": "Foo", "description": "The bartenders Foo", "price": 50.2},
	{"name": "Bar", "description": "The bartenders Bar", "price": 62, "tax": 20.2},
	{"name": "Baz", "description": "The bartenders Baz", "price": 50.2, "tax": 10.5, "tags": []any{}},
}

var errPlaceholderTitle = errors.New(`title must not be the placeholder "string"`)

var Sotem = schema.New("Sotem",
	schema.String("title"),
	schema.Timestamp("timestamp"),
	schema.String("description", schema.Optional()),
).WithValidator("title_not_placeholder", func(i *schema.Instance) error {
	if i.String("title") == "string" {
		return errPlaceholderTitle
	}
	return nil
})

var CarTotem = schema.New("CarTotem",
	schema.String("description"),
	schema.String("totem_type", schema.Default("car")),
)

var PlaneTotem = schema.New("PlaneTotem",
	schema.String("description"),
	schema.String("totem_type", schema.Default("plane")),
	schema.Int("size"),
)

// VehicleTotems are served as whichever of PlaneTotem or CarTotem validates first.
var VehicleTotems = map[string]map[string]any{
	"totem1": {"description": "All my friends drive a low rider", "totem_type": "car"},
	"totem2": {"description": "Music is my aeroplane, it's my aeroplane", "totem_type": "plane", "size": 5},
}

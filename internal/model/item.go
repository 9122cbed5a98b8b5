package model

import "github.com/deppfellow/apiplayground/internal/schema"

var FirstItem = schema.New("FirstItem",
	schema.String("title"),
	schema.Int("size", schema.Default(10)),
)

var Image = schema.New("Image",
	schema.URL("url"),
	schema.String("name"),
)

// Item rejects keys it does not declare.
var Item = schema.New("Item",
	schema.String("name"),
	schema.String("description",
		schema.Default(""),
		schema.MaxLength(15),
		schema.Title("The description of the item"),
		schema.Examples("Its a good item"),
	),
	schema.Float("price",
		schema.Gt(0),
		schema.Describe("The price must be greater than zero"),
		schema.Examples(35.4),
	),
	schema.Float("tax", schema.Default(0), schema.Examples(3.2)),
	schema.Set("tags", schema.String(""), schema.Default([]any{})),
	schema.List("image", schema.Object("", Image), schema.Optional()),
).ForbidExtra()

var ShortOffer = schema.New("ShortOffer",
	schema.String("name"),
	schema.String("description", schema.Optional()),
	schema.Float("price"),
)

var Offer = schema.New("Offer",
	schema.String("name"),
	schema.String("description", schema.Optional()),
	schema.Float("price"),
	schema.List("items", schema.Object("", Item)),
)

// ModelNames are the choices of the models endpoint.
var ModelNames = []string{"alexnet", "resnet", "lenet"}

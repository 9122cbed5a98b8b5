package model

import "github.com/deppfellow/apiplayground/internal/schema"

var CalcItems = schema.New("Items",
	schema.Int("var1"),
	schema.Int("var2"),
)

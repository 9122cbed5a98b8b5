package model

import "github.com/deppfellow/apiplayground/internal/schema"

// NewUser is the payload of the users resource.
var NewUser = schema.New("User",
	schema.String("name", schema.MinLength(3), schema.MaxLength(50)),
	schema.Email("email"),
)

var UserIn = schema.New("UserIn",
	schema.String("username"),
	schema.Email("email"),
	schema.String("full_name", schema.Optional()),
	schema.String("password"),
)

var UserOut = schema.New("UserOut",
	schema.String("username"),
	schema.Email("email"),
	schema.String("full_name", schema.Optional()),
)

// Account is a user of the token-protected endpoints.
var Account = schema.New("User",
	schema.String("username"),
	schema.String("email", schema.Optional()),
	schema.String("full_name", schema.Optional()),
	schema.Bool("disabled", schema.Optional()),
)

package validation

import (
	"testing"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverSettings struct {
	Port string `validate:"required"`
	Env  string `validate:"required,oneof=development production"`
}

type settings struct {
	Server serverSettings `validate:"required"`
	Email  string         `validate:"omitempty,email"`
	Limit  int            `validate:"min=1,max=100"`
}

func TestStruct(t *testing.T) {
	assert.Empty(t, Struct(settings{
		Server: serverSettings{Port: "8080", Env: "production"},
		Limit:  10,
	}))

	failures := Struct(settings{
		Server: serverSettings{Env: "staging"},
		Email:  "not-an-email",
		Limit:  500,
	})
	require.Len(t, failures, 4)

	assert.Equal(t, "server.port", failures[0].Path())
	assert.Equal(t, schema.KindMissing, failures[0].Kind)
	assert.Equal(t, "server.env", failures[1].Path())
	assert.Equal(t, schema.KindInvalidChoice, failures[1].Kind)
	assert.Equal(t, "email", failures[2].Path())
	assert.Equal(t, "value is not a valid email address", failures[2].Msg)
	assert.Equal(t, "limit", failures[3].Path())
	assert.Equal(t, "Input should be less than or equal to 100", failures[3].Msg)
}

package errs

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unicornError struct {
	name  string
	cause error
}

func (e *unicornError) Error() string { return e.name + " did something" }
func (e *unicornError) Kind() Kind    { return "unicorn" }
func (e *unicornError) Unwrap() error { return e.cause }

type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) { panic("logger is broken") }

func newTestMapper(t *testing.T, debug bool) (*Mapper, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	return NewMapper(&logger, debug), &buf
}

func TestMap_BuiltInKinds(t *testing.T) {
	m, _ := newTestMapper(t, false)

	t.Run("not found with message detail", func(t *testing.T) {
		res := m.Map(NewNotFoundError("Totem not found"))
		assert.Equal(t, http.StatusNotFound, res.Status)
		assert.Equal(t, map[string]any{"detail": map[string]string{"message": "Totem not found"}}, res.Body)
	})

	t.Run("unauthorized carries the challenge", func(t *testing.T) {
		res := m.Map(NewUnauthorizedError("Not authenticated"))
		assert.Equal(t, http.StatusUnauthorized, res.Status)
		assert.Equal(t, "Bearer", res.Headers["WWW-Authenticate"])
	})

	t.Run("conflict with custom status", func(t *testing.T) {
		res := m.Map(NewConflictError(http.StatusTeapot, "Nope! I don't like ABC."))
		assert.Equal(t, http.StatusTeapot, res.Status)
		assert.Equal(t, map[string]any{"detail": "Nope! I don't like ABC."}, res.Body)
	})

	t.Run("validation failure", func(t *testing.T) {
		fieldErrs := schema.Errors{{Source: "path", Loc: []any{"a"}, Kind: schema.KindOutOfRange, Msg: "Input should be less than or equal to 1000"}}
		res := m.Map(NewValidationError(fieldErrs, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
		assert.Equal(t, map[string]any{"detail": fieldErrs}, res.Body)
	})
}

func TestMap_WalksWrapChain(t *testing.T) {
	m, _ := newTestMapper(t, false)

	wrapped := fmt.Errorf("loading totem: %w", errors.Wrap(NewNotFoundError("Totem not found"), "store"))
	res := m.Map(wrapped)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestMap_MultiErrorsAreNotSearched(t *testing.T) {
	m, _ := newTestMapper(t, false)

	joined := fmt.Errorf("%w; %w", NewNotFoundError("Totem not found"), NewUnauthorizedError("Not authenticated"))
	assert.Equal(t, http.StatusInternalServerError, m.Map(joined).Status)

	// A registered kind wrapping the multi-error still resolves.
	m.Register("unicorn", func(err error) Response { return Response{Status: http.StatusTeapot} })
	res := m.Map(&unicornError{name: "yolo", cause: joined})
	assert.Equal(t, http.StatusTeapot, res.Status)
}

func TestMap_OutermostKindWins(t *testing.T) {
	m, _ := newTestMapper(t, false)
	m.Register("unicorn", func(err error) Response {
		return Response{Status: http.StatusTeapot, Body: map[string]any{"message": err.Error()}}
	})

	err := &unicornError{name: "yolo", cause: NewNotFoundError("inner")}
	res := m.Map(err)
	assert.Equal(t, http.StatusTeapot, res.Status)
}

func TestMap_Unhandled(t *testing.T) {
	t.Run("redacted", func(t *testing.T) {
		m, buf := newTestMapper(t, false)
		res := m.Map(errors.New("connection reset by peer"))

		assert.Equal(t, http.StatusInternalServerError, res.Status)
		assert.Equal(t, map[string]any{"detail": "Internal Server Error"}, res.Body)
		assert.Contains(t, buf.String(), "connection reset by peer")
	})

	t.Run("debug includes trace", func(t *testing.T) {
		m, _ := newTestMapper(t, true)
		res := m.Map(errors.New("boom"))

		body := res.Body.(map[string]any)
		require.Contains(t, body, "trace")
		assert.Contains(t, body["trace"], "boom")
		assert.Contains(t, body["trace"], "mapper_test.go")
	})
}

func TestRegister_MostRecentWins(t *testing.T) {
	m, _ := newTestMapper(t, false)

	m.Register("unicorn", func(err error) Response {
		return Response{Status: http.StatusTeapot, Body: map[string]any{"message": "first"}}
	})
	m.Register("unicorn", func(err error) Response {
		return Response{Status: http.StatusTeapot, Body: map[string]any{"message": "Oops! " + err.Error()}}
	})

	res := m.Map(&unicornError{name: "yolo"})
	assert.Equal(t, http.StatusTeapot, res.Status)
	assert.Equal(t, map[string]any{"message": "Oops! yolo did something"}, res.Body)
}

func TestMap_UnregisteredCustomKindIsUnhandled(t *testing.T) {
	m, _ := newTestMapper(t, false)
	res := m.Map(&unicornError{name: "yolo"})
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestMap_BrokenLoggerStillResponds(t *testing.T) {
	logger := zerolog.New(panicWriter{})
	m := NewMapper(&logger, false)

	var res Response
	require.NotPanics(t, func() { res = m.Map(NewNotFoundError("Item not found")) })
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestHTTPError_CopiesAreIndependent(t *testing.T) {
	base := NewBadRequestError("base")
	custom := base.WithDetail("custom").WithHeader("X-Error", "Bad")

	assert.Equal(t, "base", base.Detail)
	assert.Empty(t, base.Headers)
	assert.Equal(t, "custom", custom.Error())
	assert.Equal(t, "Bad", custom.Headers["X-Error"])
	assert.True(t, errors.Is(custom, &HTTPError{}))
}

func TestStatus_DoesNotLog(t *testing.T) {
	m, buf := newTestMapper(t, false)

	assert.Equal(t, http.StatusNotFound, m.Status(NewNotFoundError("Totem not found")))
	assert.Equal(t, http.StatusInternalServerError, m.Status(errors.New("boom")))
	assert.Empty(t, buf.String())
}

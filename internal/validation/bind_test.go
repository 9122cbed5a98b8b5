package validation

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemSchema = schema.New("Item",
	schema.String("name"),
	schema.String("description", schema.Optional()),
	schema.Float("price"),
	schema.Float("tax", schema.Optional()),
)

var userSchema = schema.New("User",
	schema.String("username"),
	schema.String("full_name", schema.Optional()),
)

func newContext(method, target string, body string) (echo.Context, *http.Request) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return e.NewContext(req, httptest.NewRecorder()), req
}

func validationErr(t *testing.T, err error) *errs.ValidationError {
	t.Helper()
	require.Error(t, err)
	var v *errs.ValidationError
	require.True(t, errors.As(err, &v), "expected *errs.ValidationError, got %T", err)
	return v
}

func TestBind_PathBounds(t *testing.T) {
	plan := NewPlan("calc3",
		Path(schema.Int("a", schema.Ge(0), schema.Le(1000))),
		Path(schema.Int("b", schema.Ge(0), schema.Le(10))),
	)

	c, _ := newContext(http.MethodGet, "/calc3/add/1001/1", "")
	c.SetParamNames("a", "b")
	c.SetParamValues("1001", "1")

	_, err := Bind(c, plan)
	v := validationErr(t, err)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "path", v.Errors[0].Source)
	assert.Equal(t, []any{"a"}, v.Errors[0].Loc)
	assert.Equal(t, schema.KindOutOfRange, v.Errors[0].Kind)

	c, _ = newContext(http.MethodGet, "/calc3/add/1/2", "")
	c.SetParamNames("a", "b")
	c.SetParamValues("1", "2")
	bound, err := Bind(c, plan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bound.Int("a"))
	assert.Equal(t, int64(2), bound.Int("b"))
}

func TestBind_CollectsErrorsAcrossSources(t *testing.T) {
	plan := NewPlan("mixed",
		Path(schema.Int("item_id")),
		Query(schema.String("q", schema.MinLength(3))),
		Header(schema.String("x_token")),
		Body(schema.Object("item", itemSchema)),
	)

	c, _ := newContext(http.MethodPut, "/items/abc?q=ab", `{"name": "Foo", "price": "cheap"}`)
	c.SetParamNames("item_id")
	c.SetParamValues("abc")

	_, err := Bind(c, plan)
	v := validationErr(t, err)
	require.Len(t, v.Errors, 4)

	locs := make([][]any, 0, len(v.Errors))
	for _, e := range v.Errors {
		locs = append(locs, append([]any{e.Source}, e.Loc...))
	}
	assert.Equal(t, [][]any{
		{"path", "item_id"},
		{"query", "q"},
		{"header", "x-token"},
		{"body", "price"},
	}, locs)
	assert.Equal(t, map[string]any{"name": "Foo", "price": "cheap"}, v.Body)
}

func TestBind_WholeBodyAndEmbedded(t *testing.T) {
	t.Run("single body param receives the whole body", func(t *testing.T) {
		plan := NewPlan("create", Body(schema.Object("item", itemSchema)))
		c, _ := newContext(http.MethodPost, "/items/", `{"name": "Foo", "price": 35.4}`)

		bound, err := Bind(c, plan)
		require.NoError(t, err)
		item := bound.Object("item")
		require.NotNil(t, item)
		assert.Equal(t, "Foo", item.String("name"))
		assert.Equal(t, 35.4, item.Float("price"))
	})

	t.Run("embedded param reads its own key", func(t *testing.T) {
		plan := NewPlan("update", Body(schema.Object("item", itemSchema), Embed()))

		c, _ := newContext(http.MethodPut, "/items/1", `{"name": "Foo", "price": 1}`)
		_, err := Bind(c, plan)
		v := validationErr(t, err)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, []any{"item"}, v.Errors[0].Loc)
		assert.Equal(t, schema.KindMissing, v.Errors[0].Kind)

		c, _ = newContext(http.MethodPut, "/items/1", `{"item": {"name": "Foo", "price": 1}}`)
		bound, err := Bind(c, plan)
		require.NoError(t, err)
		assert.Equal(t, "Foo", bound.Object("item").String("name"))
	})

	t.Run("several body params", func(t *testing.T) {
		plan := NewPlan("update2",
			Body(schema.Object("item", itemSchema)),
			Body(schema.Object("user", userSchema)),
			Body(schema.Int("importance", schema.Gt(0))),
		)
		c, _ := newContext(http.MethodPut, "/items/1",
			`{"item": {"name": "Foo", "price": 1}, "user": {"username": "dave"}, "importance": 0}`)

		_, err := Bind(c, plan)
		v := validationErr(t, err)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, []any{"importance"}, v.Errors[0].Loc)
	})

	t.Run("missing body", func(t *testing.T) {
		plan := NewPlan("create", Body(schema.Object("item", itemSchema)))
		c, _ := newContext(http.MethodPost, "/items/", "")

		_, err := Bind(c, plan)
		v := validationErr(t, err)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, "body", v.Errors[0].Source)
		assert.Empty(t, v.Errors[0].Loc)
		assert.Equal(t, schema.KindMissing, v.Errors[0].Kind)
	})
}

func TestBind_InvalidJSON(t *testing.T) {
	plan := NewPlan("create", Body(schema.Object("item", itemSchema)))
	c, _ := newContext(http.MethodPost, "/items/", `{"name": `)

	_, err := Bind(c, plan)
	v := validationErr(t, err)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, schema.KindJSONInvalid, v.Errors[0].Kind)
	assert.Equal(t, `{"name": `, v.Body)

	for _, body := range []string{
		`{"name": "a", "price": 1} trailing garbage`,
		`{"name": "a", "price": 1}{"name": "b", "price": 2}`,
	} {
		c, _ := newContext(http.MethodPost, "/items/", body)
		_, err := Bind(c, plan)
		v := validationErr(t, err)
		require.Len(t, v.Errors, 1, body)
		assert.Equal(t, schema.KindJSONInvalid, v.Errors[0].Kind, body)
	}

	c, _ = newContext(http.MethodPost, "/items/", "{\"name\": \"a\", \"price\": 1}\n")
	_, err = Bind(c, plan)
	require.NoError(t, err)
}

func TestBind_IntegerOverflow(t *testing.T) {
	plan := NewPlan("add", Query(schema.Int("b")))
	c, _ := newContext(http.MethodPost, "/calc2/add/?b=99999999999999999999", "")

	_, err := Bind(c, plan)
	v := validationErr(t, err)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, []any{"b"}, v.Errors[0].Loc)
	assert.Equal(t, schema.KindTypeMismatch, v.Errors[0].Kind)

	whole := NewPlan("put", Body(schema.Int("n")))
	c, _ = newContext(http.MethodPost, "/n", "9223372036854775808")
	_, err = Bind(c, whole)
	v = validationErr(t, err)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, schema.KindTypeMismatch, v.Errors[0].Kind)
}

func TestBind_QueryHeaderCookie(t *testing.T) {
	plan := NewPlan("read",
		Query(schema.String("q", schema.Optional()), Alias("item-query")),
		Query(schema.List("tag", schema.String(""), schema.Optional())),
		Query(schema.Int("limit", schema.Default(10)), Hidden()),
		Query(schema.Int("skip", schema.Default(0))),
		Header(schema.String("user_agent", schema.Optional())),
		Header(schema.List("x_token", schema.String(""), schema.Optional())),
		Cookie(schema.String("ads_id", schema.Optional())),
	)

	c, req := newContext(http.MethodGet, "/items/?item-query=first&item-query=last&tag=a&tag=b&skip=5", "")
	req.Header.Set("User-Agent", "tester")
	req.Header.Add("X-Token", "foo")
	req.Header.Add("X-Token", "bar")
	req.AddCookie(&http.Cookie{Name: "ads_id", Value: "cookie-1"})

	bound, err := Bind(c, plan)
	require.NoError(t, err)

	assert.Equal(t, "last", bound.String("q"))
	assert.Equal(t, []string{"a", "b"}, bound.Strings("tag"))
	assert.Equal(t, int64(10), bound.Int("limit"))
	assert.False(t, bound.IsSet("limit"))
	assert.Equal(t, int64(5), bound.Int("skip"))
	assert.Equal(t, "tester", bound.String("user_agent"))
	assert.Equal(t, []string{"foo", "bar"}, bound.Strings("x_token"))
	assert.Equal(t, "cookie-1", bound.String("ads_id"))

	values := bound.Values()
	require.Len(t, values, 7)
	assert.Equal(t, BoundValue{Field: "limit", Source: SourceQuery, Value: int64(10), Present: false}, values[2])
	assert.True(t, values[0].Present)
}

func TestBind_FormAndFiles(t *testing.T) {
	plan := NewPlan("upload",
		Form(schema.String("token")),
		File(schema.File("file")),
		File(schema.List("extras", schema.File(""), schema.Optional())),
	)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("token", "secret"))
	fw, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("hello"))
	for _, name := range []string{"a.txt", "b.txt"} {
		fw, err := w.CreateFormFile("extras", name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte(name))
	}
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/files/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	c := e.NewContext(req, httptest.NewRecorder())

	bound, err := Bind(c, plan)
	require.NoError(t, err)

	assert.Equal(t, "secret", bound.String("token"))
	upload := bound.Upload("file")
	require.NotNil(t, upload)
	assert.Equal(t, "notes.txt", upload.Filename)
	data, err := upload.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	extras := bound.Uploads("extras")
	require.Len(t, extras, 2)
	assert.Equal(t, "b.txt", extras[1].Filename)
}

func TestBind_MissingFormFieldsReportAsBody(t *testing.T) {
	plan := NewPlan("login",
		Form(schema.String("username")),
		Form(schema.String("password")),
	)

	form := url.Values{"username": {"johndoe"}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := Bind(c, plan)
	v := validationErr(t, err)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "body", v.Errors[0].Source)
	assert.Equal(t, []any{"password"}, v.Errors[0].Loc)
}

func TestPlan(t *testing.T) {
	plan := NewPlan("calc2",
		Query(schema.Int("b")),
		Query(schema.Int("a", schema.Default(10)), Hidden()),
	)
	require.Len(t, plan.Params(), 2)
	documented := plan.Documented()
	require.Len(t, documented, 1)
	assert.Equal(t, "b", documented[0].Name())

	assert.Panics(t, func() {
		NewPlan("dup", Query(schema.Int("a")), Path(schema.Int("a")))
	})
}

package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/apiplayground/internal/config"
	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/handler"
	"github.com/deppfellow/apiplayground/internal/lib/job"
	"github.com/deppfellow/apiplayground/internal/middleware"
	"github.com/deppfellow/apiplayground/internal/repository"
	"github.com/deppfellow/apiplayground/internal/router"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	server *server.Server
	echo   *echo.Echo
}

type appOption func(*server.Server)

func withRedis(t *testing.T) appOption {
	return func(s *server.Server) {
		mr := miniredis.RunT(t)
		s.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = s.Redis.Close() })
	}
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimit = 0
	cfg.Auth.BcryptCost = bcrypt.MinCost

	logger := zerolog.Nop()
	s := &server.Server{
		Config: cfg,
		Logger: &logger,
		Mapper: errs.NewMapper(&logger, false),
		Job:    job.NewJobService(&logger, cfg, false),
	}
	s.Job.InitHandlers(cfg, &logger)
	t.Cleanup(s.Job.Stop)

	for _, opt := range opts {
		opt(s)
	}

	repos, err := repository.NewRepositories(s)
	require.NoError(t, err)

	services, err := service.NewServices(s, repos)
	require.NoError(t, err)

	e := router.NewRouter(s, handler.NewHandlers(s, services), middleware.NewMiddlewares(s, services))
	return &testApp{server: s, echo: e}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case url.Values:
		req = httptest.NewRequest(method, path, strings.NewReader(b.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(data)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCalc(t *testing.T) {
	app := newTestApp(t)

	t.Run("body object", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/calc/add/", map[string]any{"var1": 2, "var2": 3})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"a":2,"b":3,"sum":5}`, rec.Body.String())
	})

	t.Run("hidden query default", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/calc2/add/?b=5", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"a":10,"b":5,"sum":15}`, rec.Body.String())
	})

	t.Run("sum overflow", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/calc2/add/?a=9223372036854775807&b=1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"detail":"Sum overflows a 64-bit integer"}`, rec.Body.String())

		rec = app.do(t, http.MethodPost, "/api/v1/calc2/add/?a=-9223372036854775808&b=-1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodPost, "/api/v1/calc2/add/?a=9223372036854775806&b=1", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"a":9223372036854775806,"b":1,"sum":9223372036854775807}`, rec.Body.String())
	})

	t.Run("path out of range", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/calc3/add/1001/1", nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decode[map[string]any](t, rec)
		detail := body["detail"].([]any)
		require.Len(t, detail, 1)
		first := detail[0].(map[string]any)
		assert.Equal(t, []any{"path", "a"}, first["loc"])
		assert.Equal(t, "out_of_range", first["type"])
	})

	t.Run("every failure reported with the body echoed", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/calc/add/", `{"var1":"x"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decode[map[string]any](t, rec)
		assert.Len(t, body["detail"], 2)
		assert.Equal(t, map[string]any{"var1": "x"}, body["body"])
	})
}

func TestTotems(t *testing.T) {
	app := newTestApp(t)

	t.Run("read only set fields", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/totems/foo", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"name":"Foo","price":50.2}`, rec.Body.String())
	})

	t.Run("unknown totem", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/totems/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":{"message":"Totem not found"}}`, rec.Body.String())
	})

	t.Run("patch merges supplied fields only", func(t *testing.T) {
		rec := app.do(t, http.MethodPatch, "/api/v1/totems4/bar", map[string]any{"tags": []string{"x"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t,
			`{"name":"Bar","description":"The bartenders","price":62,"tax":20.2,"tags":["x"]}`,
			rec.Body.String())

		rec = app.do(t, http.MethodGet, "/api/v1/totems/bar", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"Bar","description":"The bartenders","price":62,"tags":["x"]}`, rec.Body.String())
	})

	t.Run("patch unknown totem", func(t *testing.T) {
		rec := app.do(t, http.MethodPatch, "/api/v1/totems4/nope", map[string]any{"name": "Nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create adds tax", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/totems/", map[string]any{"name": "Qux", "price": 10, "tax": 2.5})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 12.5, decode[map[string]any](t, rec)["price"])
	})

	t.Run("vehicle union", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/totems2/totem2", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "plane", decode[map[string]any](t, rec)["totem_type"])

		rec = app.do(t, http.MethodGet, "/api/v1/totems2/totem1", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "car", decode[map[string]any](t, rec)["totem_type"])
	})
}

func TestSotems(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPut, "/api/v1/sotems/1", map[string]any{
		"title":     "string",
		"timestamp": "2024-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decode[map[string]any](t, rec)["detail"].([]any)
	require.Len(t, detail, 1)
	assert.Equal(t, "schema_check", detail[0].(map[string]any)["type"])

	rec = app.do(t, http.MethodPut, "/api/v1/sotems/1", map[string]any{
		"title":     "Sotem",
		"timestamp": "2024-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Sotem", decode[map[string]any](t, rec)["title"])
}

func TestItems(t *testing.T) {
	app := newTestApp(t)

	t.Run("item id prefix", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/items/isbn-123", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"item_id":"isbn-123"}`, rec.Body.String())

		rec = app.do(t, http.MethodGet, "/api/v1/items/abc", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/v1/items/isbn-abc", nil)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.JSONEq(t, `{"detail":"Nope! I don't like ABC."}`, rec.Body.String())
	})

	t.Run("scoped username", func(t *testing.T) {
		tests := []struct {
			id     string
			status int
			body   string
		}{
			{"portal_gun", http.StatusOK, `{"description":"Gun to create portals","owner":"Rick"}`},
			{"plumbus", http.StatusBadRequest, `{"detail":"Owner error: Rick"}`},
			{"unknown", http.StatusNotFound, `{"detail":"Item not found"}`},
		}
		for _, tt := range tests {
			t.Run(tt.id, func(t *testing.T) {
				rec := app.do(t, http.MethodGet, "/api/v1/items/yield-exc/"+tt.id, nil)
				assert.Equal(t, tt.status, rec.Code)
				assert.JSONEq(t, tt.body, rec.Body.String())
			})
		}
	})

	t.Run("header dependencies", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/items/items-path-depends/", nil,
			"X-Token", "fake_super_secret_token", "X-Key", "wrong")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"detail":"X-Key header invalid"}`, rec.Body.String())
	})

	t.Run("window", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/items/items-dep/?skip=1&limit=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[{"item_name":"Bar"}]}`, rec.Body.String())

		rec = app.do(t, http.MethodGet, "/api/v1/items/items-dep/?skip=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	})

	t.Run("extra keys forbidden", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/items/create_redis_item/", map[string]any{
			"name": "foo", "price": 1.5, "color": "red",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRedisItems(t *testing.T) {
	app := newTestApp(t, withRedis(t))

	rec := app.do(t, http.MethodPost, "/api/v1/items/create_redis_item/", map[string]any{"name": " foo ", "price": 3.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok","Foo":3.5}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/v1/items/get_redis_item/Foo", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok","Foo":"3.5"}`, rec.Body.String())

	rec = app.do(t, http.MethodDelete, "/api/v1/items/delete_redis_item/?item_key=Foo", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"delete","Foo":"3.5"}`, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/v1/items/get_redis_item/Foo", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Key Foo is absent."}`, rec.Body.String())
}

func TestOthers(t *testing.T) {
	app := newTestApp(t)

	t.Run("custom error kind", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/unicorns/yolo", nil)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.JSONEq(t, `{"message":"Oops! yolo did something. There goes a rainbow..."}`, rec.Body.String())
	})

	t.Run("redirect", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/portal?teleport=true", nil)
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", rec.Header().Get(echo.HeaderLocation))

		rec = app.do(t, http.MethodGet, "/api/v1/portal", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("response coerced to float map", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/keyword-weights/", nil)
		assert.Equal(t, http.StatusIMUsed, rec.Code)
		assert.JSONEq(t, `{"foo":2.3,"bar":3.4}`, rec.Body.String())
	})

	t.Run("enum path", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/models/lenet", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"model_name":"lenet","message":"LeCNN all the images"}`, rec.Body.String())

		rec = app.do(t, http.MethodGet, "/api/v1/models/vgg", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("greeting", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/hello/vasya", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Hello, Vasya"}`, rec.Body.String())

		rec = app.do(t, http.MethodGet, "/api/v1/hello/v1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload form", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/api/v1/files2/"`)
	})
}

func TestSecurity(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/token", url.Values{"username": {"johndoe"}, "password": {"bad"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/token", url.Values{"username": {"johndoe"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[map[string]string](t, rec)["access_token"]

	rec = app.do(t, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = app.do(t, http.MethodGet, "/api/v1/users/me", nil, echo.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "johndoe", decode[map[string]any](t, rec)["username"])
}

func TestRegisterUser(t *testing.T) {
	app := newTestApp(t)
	user := map[string]any{"username": "morty", "email": "morty@example.com", "password": "plumbus"}

	rec := app.do(t, http.MethodPost, "/api/v1/user/", user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[map[string]any](t, rec)
	assert.Equal(t, "morty", out["username"])
	assert.NotContains(t, out, "password")

	rec = app.do(t, http.MethodPost, "/api/v1/user/", user)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSendNotification(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/send_notification/?email=johndoe@example.com&message=hello", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Notification is being sent in the background"}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/v1/send_notification/?email=nope&message=hi", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["detail"], 2)
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t)

	t.Run("health without dependencies", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/status", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[map[string]any](t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, map[string]any{"status": "disabled"}, body["checks"].(map[string]any)["database"])
	})

	t.Run("openapi document", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/openapi.json", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		doc := decode[map[string]any](t, rec)
		paths := doc["paths"].(map[string]any)
		assert.Contains(t, paths, "/calc3/add/{a}/{b}")

		add2 := paths["/calc2/add/"].(map[string]any)["post"].(map[string]any)
		params := add2["parameters"].([]any)
		require.Len(t, params, 1)
		assert.Equal(t, "b", params[0].(map[string]any)["name"])

		add := paths["/calc/add/"].(map[string]any)["post"].(map[string]any)
		assert.Equal(t, "add_calc_add__post", add["operationId"])

		me := paths["/users/me"].(map[string]any)["get"].(map[string]any)
		assert.Contains(t, me, "security")
	})

	t.Run("docs page", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/docs", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/openapi.json")
	})

	t.Run("metrics", func(t *testing.T) {
		app.do(t, http.MethodGet, "/api/v1/calc3/add/1/1", nil)
		rec := app.do(t, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "playground_http_requests_total")
	})

	t.Run("process time header", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/names/?args=foo%20bar", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
		assert.JSONEq(t, `{"message":"Hello Foo, Bar"}`, rec.Body.String())
	})
}

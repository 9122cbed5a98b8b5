package handler

import (
	"net/http"
	"strings"

	"github.com/deppfellow/apiplayground/internal/lib/utils"
	"github.com/deppfellow/apiplayground/internal/middleware"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/service"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
)

var (
	createUserPlan = validation.NewPlan("create_user",
		validation.Body(schema.Object("user", model.NewUser)),
	)

	helloUserPlan = validation.NewPlan("hello",
		validation.Query(schema.String("name", schema.Default("World"))),
	)

	userItemPlan = validation.NewPlan("read_user_item",
		validation.Path(schema.Int("user_id")),
		validation.Path(schema.String("item_id")),
		validation.Query(schema.String("q", schema.Optional())),
		validation.Query(schema.Bool("short", schema.Default(false))),
	)

	registerUserPlan = validation.NewPlan("register_user",
		validation.Body(schema.Object("user_in", model.UserIn)),
	)

	loginTokenPlan = validation.NewPlan("login_for_token",
		validation.Form(schema.String("grant_type", schema.Optional(), schema.Pattern("^password$"))),
		validation.Form(schema.String("username")),
		validation.Form(schema.String("password")),
		validation.Form(schema.String("scope", schema.Default(""))),
		validation.Form(schema.String("client_id", schema.Optional())),
		validation.Form(schema.String("client_secret", schema.Optional())),
	)
)

// UserHandler serves the users resource and the bearer-token security demo.
type UserHandler struct {
	Handler
	auth *service.AuthService
}

func NewUserHandler(s *server.Server, auth *service.AuthService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

func (h *UserHandler) Routes() []Route {
	users := tagged("users",
		h.route(http.MethodPost, "/users/", createUserPlan, h.CreateUser, http.StatusOK),
		h.route(http.MethodGet, "/users-hello/", helloUserPlan, h.Hello, http.StatusOK),
		h.route(http.MethodGet, "/users/:user_id/items/:item_id", userItemPlan, h.ReadUserItem, http.StatusOK),
		h.route(http.MethodPost, "/user/", registerUserPlan, h.RegisterUser, http.StatusOK).Tag("others"),
	)
	security := tagged("security",
		h.route(http.MethodPost, "/token", loginTokenPlan, h.Login, http.StatusOK),
		h.route(http.MethodGet, "/users/me", noParamsPlan, h.ReadMe, http.StatusOK).RequireAuth(),
	)
	return append(users, security...)
}

func (h *UserHandler) CreateUser(c echo.Context, in *validation.Bound) (any, error) {
	user := in.Object("user")
	user = user.With("name", utils.Title(strings.TrimSpace(user.String("name"))))
	return map[string]any{"success": true, "data": user}, nil
}

func (h *UserHandler) Hello(c echo.Context, in *validation.Bound) (any, error) {
	return map[string]string{"message": "Hello " + utils.Title(strings.TrimSpace(in.String("name")))}, nil
}

func (h *UserHandler) ReadUserItem(c echo.Context, in *validation.Bound) (any, error) {
	item := map[string]any{"item_id": in.String("item_id"), "owner_id": in.Int("user_id")}
	if q := in.String("q"); q != "" {
		item["q"] = q
	}
	if !in.Bool("short") {
		item["description"] = longDescription
	}
	return item, nil
}

// RegisterUser stores the user with a hashed password and answers without it.
func (h *UserHandler) RegisterUser(c echo.Context, in *validation.Bound) (any, error) {
	return h.auth.Register(c.Request().Context(), in.Object("user_in"))
}

func (h *UserHandler) Login(c echo.Context, in *validation.Bound) (any, error) {
	return h.auth.Login(c.Request().Context(), in.String("username"), in.String("password"))
}

func (h *UserHandler) ReadMe(c echo.Context, in *validation.Bound) (any, error) {
	return c.Get(middleware.CurrentUserKey), nil
}

// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and mounts every handler route under the configured root path,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/handler"
	"github.com/deppfellow/apiplayground/internal/middleware"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, middlewares *middleware.Middlewares) *echo.Echo {
	s.Mapper.Register(errs.KindValidation, handler.ValidationWithBodyHandler)
	s.Mapper.Register(handler.KindUnicorn, handler.UnicornHandler)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = GoccyJSONSerializer{}
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// ProcessTime wraps everything so the header covers the whole chain, error answers included.
	router.Use(
		middlewares.Playground.ProcessTime(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.CORS(),
		middlewares.RateLimit.Limit(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Playground.NameFormat(),
		middlewares.Metrics.Collect(),
	)

	registerSystemRoutes(router, h, middlewares)

	api := router.Group(s.Config.Server.RootPath)
	for _, route := range h.Routes() {
		var mw []echo.MiddlewareFunc
		if route.Auth {
			mw = append(mw, middlewares.Auth.RequireAuth)
		}
		api.Add(route.Method, route.Path, route.Handler, mw...)
	}

	return router
}

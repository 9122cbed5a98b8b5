package router

import (
	"github.com/deppfellow/apiplayground/internal/handler"
	"github.com/deppfellow/apiplayground/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the endpoints that live outside the API root path.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, middlewares *middleware.Middlewares) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/openapi.json", h.OpenAPI.ServeOpenAPISpec)

	r.GET("/metrics", middlewares.Metrics.Handler())
}

package handler

import (
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
)

// Route is one endpoint: how the router registers it and how the API document describes it.
type Route struct {
	Method  string
	Path    string
	Plan    *validation.Plan
	Handler echo.HandlerFunc
	Status  int

	Summary     string
	Tags        []string
	Deprecated  bool
	ContentType string

	// Auth routes run behind the bearer token middleware.
	Auth bool
}

func (r Route) Describe(summary string) Route {
	r.Summary = summary
	return r
}

func (r Route) Deprecate() Route {
	r.Deprecated = true
	return r
}

func (r Route) Tag(tags ...string) Route {
	r.Tags = append(append([]string(nil), r.Tags...), tags...)
	return r
}

func (r Route) RequireAuth() Route {
	r.Auth = true
	return r
}

func (h Handler) route(method, path string, plan *validation.Plan, fn HandlerFunc, status int) Route {
	return Route{
		Method:      method,
		Path:        path,
		Plan:        plan,
		Handler:     Handle(h, plan, fn, status),
		Status:      status,
		ContentType: echo.MIMEApplicationJSON,
	}
}

func (h Handler) htmlRoute(method, path string, plan *validation.Plan, fn HandlerFunc, status int) Route {
	return Route{
		Method:      method,
		Path:        path,
		Plan:        plan,
		Handler:     HandleHTML(h, plan, fn, status),
		Status:      status,
		ContentType: echo.MIMETextHTMLCharsetUTF8,
	}
}

// tagged sets the documentation tag of every route of one handler.
func tagged(tag string, routes ...Route) []Route {
	for i := range routes {
		if len(routes[i].Tags) == 0 {
			routes[i].Tags = []string{tag}
		}
	}
	return routes
}

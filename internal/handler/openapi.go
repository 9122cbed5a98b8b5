package handler

import (
	_ "embed"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
)

//go:embed static/openapi.html
var openAPIPage string

var routeParam = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

// OpenAPIHandler serves an OpenAPI 3 document generated from the binding plans of every route,
// and the HTML page that renders it.
type OpenAPIHandler struct {
	Handler

	routes []Route

	once sync.Once
	doc  map[string]any
}

func NewOpenAPIHandler(s *server.Server, routes []Route) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		routes:  routes,
	}
}

// ServeOpenAPIUI serves the docs page with caching disabled.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTML(http.StatusOK, openAPIPage); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}
	return nil
}

func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	h.once.Do(func() {
		h.doc = h.Document()
	})
	return c.JSON(http.StatusOK, h.doc)
}

// Document builds the API description. Hidden parameters are left out.
func (h *OpenAPIHandler) Document() map[string]any {
	rootPath := h.server.Config.Server.RootPath
	paths := map[string]map[string]any{}

	for _, r := range h.routes {
		path := routeParam.ReplaceAllString(r.Path, "{$1}")
		if paths[path] == nil {
			paths[path] = map[string]any{}
		}
		paths[path][strings.ToLower(r.Method)] = operation(r)
	}

	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "API Playground",
			"version": "1.0.0",
		},
		"servers": []map[string]any{{"url": rootPath}},
		"paths":   paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				"OAuth2PasswordBearer": map[string]any{
					"type": "oauth2",
					"flows": map[string]any{
						"password": map[string]any{"tokenUrl": rootPath + "/token", "scopes": map[string]any{}},
					},
				},
			},
		},
	}
}

func operation(r Route) map[string]any {
	op := map[string]any{
		"operationId": operationID(r),
		"responses": map[string]any{
			strconv.Itoa(r.Status): map[string]any{
				"description": "Successful Response",
				"content":     map[string]any{r.ContentType: map[string]any{}},
			},
			"422": map[string]any{"description": "Validation Error"},
		},
	}
	if r.Summary != "" {
		op["summary"] = r.Summary
	}
	if len(r.Tags) > 0 {
		op["tags"] = r.Tags
	}
	if r.Deprecated {
		op["deprecated"] = true
	}
	if r.Auth {
		op["security"] = []map[string][]string{{"OAuth2PasswordBearer": {}}}
	}

	var params []map[string]any
	body := map[string]any{}
	var bodyRequired []string
	form := false

	for _, p := range r.Plan.Documented() {
		switch p.Source {
		case validation.SourcePath, validation.SourceQuery, validation.SourceHeader, validation.SourceCookie:
			param := map[string]any{
				"name":     p.Name(),
				"in":       string(p.Source),
				"required": p.Source == validation.SourcePath || p.Field.Required(),
				"schema":   p.Field.JSONSchema(),
			}
			if p.Field.Deprecated {
				param["deprecated"] = true
			}
			params = append(params, param)

		case validation.SourceBody, validation.SourceForm, validation.SourceFile:
			if p.Source != validation.SourceBody {
				form = true
			}
			body[p.Name()] = p.Field.JSONSchema()
			if p.Field.Required() {
				bodyRequired = append(bodyRequired, p.Name())
			}
		}
	}

	if len(params) > 0 {
		op["parameters"] = params
	}
	if len(body) > 0 {
		op["requestBody"] = requestBody(r.Plan, body, bodyRequired, form)
	}
	return op
}

func requestBody(plan *validation.Plan, props map[string]any, required []string, form bool) map[string]any {
	var bodySchema map[string]any
	if !form && plan.WholeBody() {
		for _, s := range props {
			bodySchema = s.(map[string]any)
		}
	} else {
		bodySchema = map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			bodySchema["required"] = required
		}
	}

	contentType := echo.MIMEApplicationJSON
	if form {
		contentType = echo.MIMEMultipartForm
	}

	return map[string]any{
		"required": len(required) > 0,
		"content":  map[string]any{contentType: map[string]any{"schema": bodySchema}},
	}
}

// operationID is the endpoint name and path with every non-alphanumeric rune replaced by "_",
// then the method: add_calc_add__post.
func operationID(r Route) string {
	var b strings.Builder
	b.WriteString(r.Plan.Name)
	for _, ch := range r.Path {
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	b.WriteString(strings.ToLower(r.Method))
	return b.String()
}

package middleware

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	ProcessTimeHeader = "X-Process-Time"
	RootPathHeader    = "X-Root-Path"

	namePattern = `^[a-zA-Zа-яА-Я]{2,30}$`
)

var nameFormat = regexp.MustCompile(namePattern)

// PlaygroundMiddleware holds the middleware that rewrites requests and responses of the demo
// endpoints themselves.
type PlaygroundMiddleware struct {
	server *server.Server
}

func NewPlaygroundMiddleware(s *server.Server) *PlaygroundMiddleware {
	return &PlaygroundMiddleware{server: s}
}

// ProcessTime reports the handling time in seconds and the configured root path on every
// response, including error responses. It must be the outermost middleware.
func (p *PlaygroundMiddleware) ProcessTime() echo.MiddlewareFunc {
	rootPath := p.server.Config.Server.RootPath

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			c.Response().Before(func() {
				h := c.Response().Header()
				h.Set(ProcessTimeHeader, strconv.FormatFloat(time.Since(start).Seconds(), 'f', -1, 64))
				h.Set(RootPathHeader, rootPath)
			})

			return next(c)
		}
	}
}

// NameFormat rejects greetings whose name segment (".../hello/<name>") is not 2 to 30 Latin or
// Cyrillic letters, before routing happens.
func (p *PlaygroundMiddleware) NameFormat() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			parts := strings.Split(c.Request().URL.Path, "/")
			if len(parts) >= 2 && parts[len(parts)-2] == "hello" && !nameFormat.MatchString(parts[len(parts)-1]) {
				return errs.NewBadRequestError("Name must be in regex " + namePattern)
			}
			return next(c)
		}
	}
}

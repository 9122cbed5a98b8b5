package middleware

import (
	"net/http"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware applied to every route and the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     global.server.Config.Server.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{"*"},
	})
}

// RequestLogger writes one "API" line per request, at a level picked from the final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// The error handler has not written the response yet when a handler returns an error,
			// so the status is derived the same way the handler will derive it.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode = global.server.Mapper.Status(classify(v.Error))
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the error funnel of the HTTP server. Every error returned by a handler or
// middleware ends up in the mapper, which logs it and picks the response.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	res := global.server.Mapper.MapWithLogger(GetLogger(c), classify(err))

	if c.Response().Committed {
		return
	}

	for k, v := range res.Headers {
		c.Response().Header().Set(k, v)
	}

	if c.Request().Method == http.MethodHead || res.Body == nil {
		_ = c.NoContent(res.Status)
		return
	}
	_ = c.JSON(res.Status, res.Body)
}

// classify turns echo's own errors and driver errors into the errs taxonomy. Errors that already
// belong to a kind pass through untouched.
func classify(err error) error {
	var classified errs.Classified
	if errors.As(err, &classified) {
		return err
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusNotFound {
			return errs.NewNotFoundDetail("Not Found")
		}

		detail, ok := echoErr.Message.(string)
		if !ok {
			detail = http.StatusText(echoErr.Code)
		}
		return errs.NewHTTPError(echoErr.Code, detail)
	}

	return sqlerr.HandleError(err)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/apiplayground/internal/middleware"
	"github.com/deppfellow/apiplayground/internal/server"
	"github.com/deppfellow/apiplayground/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// Handler holds the shared application dependencies of every concrete handler.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is an endpoint body. It receives the request already bound to the endpoint's plan.
type HandlerFunc func(c echo.Context, in *validation.Bound) (any, error)

// Redirect makes a JSON endpoint answer with a redirect instead of a body.
type Redirect struct {
	URL    string
	Status int
}

// ResponseHandler writes a successful result and describes it for logs and traces.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result any)
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	// http.status_code is already set by tracing middleware (EnhanceTracing).
}

// HTMLResponseHandler expects the handler to return the page as a string.
type HTMLResponseHandler struct {
	status int
}

func (h HTMLResponseHandler) Handle(c echo.Context, result any) error {
	return c.HTML(h.status, result.(string))
}

func (h HTMLResponseHandler) GetOperation() string {
	return "handler_html"
}

func (h HTMLResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	if page, ok := result.(string); ok && txn != nil {
		txn.AddAttribute("html.size_bytes", len(page))
	}
}

// RedirectResponseHandler answers 307 unless the Redirect carries its own status.
type RedirectResponseHandler struct{}

func (h RedirectResponseHandler) Handle(c echo.Context, result any) error {
	r := result.(Redirect)
	status := r.Status
	if status == 0 {
		status = http.StatusTemporaryRedirect
	}
	return c.Redirect(status, r.URL)
}

func (h RedirectResponseHandler) GetOperation() string {
	return "handler_redirect"
}

func (h RedirectResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	if r, ok := result.(Redirect); ok && txn != nil {
		txn.AddAttribute("redirect.url", r.URL)
	}
}

// handleRequest is the pipeline shared by every endpoint: bind, run, write, then dispatch the
// background tasks the endpoint queued. Binding failures are returned untouched so the error
// handler can answer 422 with every field error.
func handleRequest(
	c echo.Context,
	plan *validation.Plan,
	handler HandlerFunc,
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", plan.Name)
		responseHandler.AddAttributes(txn, nil)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("endpoint", plan.Name).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	// ---------------- Binding phase ---------------------------------------
	validationStart := time.Now()

	in, err := validation.Bind(c, plan)
	if err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	// ---------------- Handler execution phase --------------------------------
	tasks := &Tasks{}
	c.Set(tasksKey, tasks)

	handlerStart := time.Now()
	result, err := handler(c, in)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Warn().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if r, ok := result.(Redirect); ok {
		responseHandler = RedirectResponseHandler{}
		result = r
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	if err := responseHandler.Handle(c, result); err != nil {
		return errors.Wrap(err, "failed to write response")
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Int("background_tasks", tasks.Len()).
		Msg("request completed successfully")

	tasks.run(context.WithoutCancel(c.Request().Context()), logger)

	return nil
}

// Handle binds the request to plan, runs handler and writes its result as JSON with status.
func Handle(h Handler, plan *validation.Plan, handler HandlerFunc, status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, plan, handler, JSONResponseHandler{status: status})
	}
}

// HandleHTML is Handle for handlers that return an HTML page as a string.
func HandleHTML(h Handler, plan *validation.Plan, handler HandlerFunc, status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, plan, handler, HTMLResponseHandler{status: status})
	}
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

// Response is what the HTTP layer writes for a mapped error.
type Response struct {
	Status  int
	Body    any
	Headers map[string]string
}

// HandlerFunc builds the response for one error of a registered kind. It receives the error
// that matched (which may be wrapped inside the error originally returned).
type HandlerFunc func(err error) Response

// Mapper resolves errors to responses through a registry keyed by Kind.
//
// Resolution follows the single errors.Unwrap chain. A kind that is only reachable through a
// multi-error (errors.Join, or fmt.Errorf with several %w verbs) is not found, and the error
// maps as unhandled.
//
// Handlers are registered at startup; Map is safe for concurrent use.
type Mapper struct {
	mu       sync.RWMutex
	handlers map[Kind]HandlerFunc
	logger   *zerolog.Logger
	debug    bool
}

// NewMapper creates a mapper with handlers for the built-in kinds. When debug is true, 500
// responses include the error with its stack trace.
func NewMapper(logger *zerolog.Logger, debug bool) *Mapper {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	m := &Mapper{
		handlers: make(map[Kind]HandlerFunc),
		logger:   logger,
		debug:    debug,
	}

	m.Register(KindValidation, ValidationHandler)
	m.Register(KindNotFound, HTTPErrorHandler)
	m.Register(KindConflict, HTTPErrorHandler)
	m.Register(KindUnauthorized, HTTPErrorHandler)
	m.Register(KindHTTP, HTTPErrorHandler)
	m.Register(KindUnhandled, m.unhandled)

	return m
}

// Register installs the handler for kind. Registering a kind again replaces the previous handler.
func (m *Mapper) Register(kind Kind, h HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = h
}

func (m *Mapper) handler(kind Kind) HandlerFunc {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handlers[kind]
}

// Map logs err with the mapper's logger and resolves it to a response.
func (m *Mapper) Map(err error) Response {
	return m.MapWithLogger(m.logger, err)
}

// MapWithLogger is Map with a request-scoped logger.
func (m *Mapper) MapWithLogger(logger *zerolog.Logger, err error) Response {
	matched, kind := m.resolve(err)
	m.log(logger, err, kind)

	if kind == KindUnhandled {
		return m.handler(KindUnhandled)(err)
	}
	return m.handler(kind)(matched)
}

// Status is the status Map would answer with, without logging.
func (m *Mapper) Status(err error) int {
	matched, kind := m.resolve(err)
	return m.handler(kind)(matched).Status
}

// resolve walks the wrap chain outermost-first and returns the first error whose kind has a
// registered handler.
func (m *Mapper) resolve(err error) (error, Kind) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		c, ok := e.(Classified)
		if !ok {
			continue
		}
		if h := m.handler(c.Kind()); h != nil {
			return e, c.Kind()
		}
	}
	return err, KindUnhandled
}

// log never lets a failing logger take the response down with it.
func (m *Mapper) log(logger *zerolog.Logger, err error, kind Kind) {
	defer func() {
		_ = recover()
	}()

	var e *zerolog.Event
	if kind == KindUnhandled {
		e = logger.Error().Stack()
	} else {
		e = logger.Info()
	}
	e.Err(err).Str("error_kind", string(kind)).Msg("request error")
}

func (m *Mapper) unhandled(err error) Response {
	internal := NewInternalServerError()
	body := map[string]any{"detail": internal.Detail}
	if m.debug {
		body["trace"] = fmt.Sprintf("%+v", err)
	}
	return Response{Status: internal.Status, Body: body}
}

// ValidationHandler answers 422 with the list of field errors.
func ValidationHandler(err error) Response {
	var v *ValidationError
	if !errors.As(err, &v) {
		return Response{Status: http.StatusUnprocessableEntity, Body: map[string]any{"detail": err.Error()}}
	}
	return Response{Status: http.StatusUnprocessableEntity, Body: map[string]any{"detail": v.Errors}}
}

// HTTPErrorHandler answers with the status, detail and headers the HTTPError carries.
// Classified errors that are not HTTPErrors become a 400 with their message.
func HTTPErrorHandler(err error) Response {
	var h *HTTPError
	if !errors.As(err, &h) {
		return Response{Status: http.StatusBadRequest, Body: map[string]any{"detail": err.Error()}}
	}
	return Response{Status: h.Status, Body: map[string]any{"detail": h.Detail}, Headers: h.Headers}
}

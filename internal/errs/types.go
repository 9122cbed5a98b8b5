package errs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/deppfellow/apiplayground/internal/schema"
)

// Kind is the taxonomy class of an error. Applications may define their own kinds.
type Kind string

const (
	KindValidation   Kind = "validation_failure"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "domain_conflict"
	KindUnauthorized Kind = "unauthorized_access"
	KindHTTP         Kind = "http"
	KindUnhandled    Kind = "unhandled"
)

// Classified is implemented by every error that belongs to a kind.
type Classified interface {
	error
	Kind() Kind
}

// HTTPError is an error that already knows its HTTP response.
//
// Detail is serialized as-is under "detail", so it can be a plain string or a structured value
// such as map[string]string{"message": "..."}.
type HTTPError struct {
	Code    string            `json:"-"`
	Status  int               `json:"-"`
	Detail  any               `json:"detail"`
	Headers map[string]string `json:"-"`

	kind Kind
}

// Error renders the detail for logs.
func (e *HTTPError) Error() string {
	switch d := e.Detail.(type) {
	case nil:
		return http.StatusText(e.Status)
	case string:
		return d
	case map[string]string:
		if msg, ok := d["message"]; ok {
			return msg
		}
	}
	return fmt.Sprint(e.Detail)
}

func (e *HTTPError) Kind() Kind {
	if e.kind == "" {
		return KindHTTP
	}
	return e.kind
}

// Is makes errors.Is(err, &HTTPError{}) true for any *HTTPError. Status and detail are not compared.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithDetail returns a copy with Detail replaced, leaving the receiver untouched.
func (e *HTTPError) WithDetail(detail any) *HTTPError {
	c := e.clone()
	c.Detail = detail
	return c
}

// WithHeader returns a copy carrying one extra response header.
func (e *HTTPError) WithHeader(key, value string) *HTTPError {
	c := e.clone()
	c.Headers[key] = value
	return c
}

func (e *HTTPError) clone() *HTTPError {
	headers := make(map[string]string, len(e.Headers)+1)
	for k, v := range e.Headers {
		headers[k] = v
	}
	return &HTTPError{Code: e.Code, Status: e.Status, Detail: e.Detail, Headers: headers, kind: e.kind}
}

// ValidationError carries every field error found while binding a request, plus the decoded body
// the client sent.
type ValidationError struct {
	Errors schema.Errors
	Body   any
}

func NewValidationError(errors schema.Errors, body any) *ValidationError {
	return &ValidationError{Errors: errors, Body: body}
}

func (e *ValidationError) Error() string {
	return "request validation failed: " + e.Errors.Error()
}

func (e *ValidationError) Kind() Kind { return KindValidation }

func (e *ValidationError) Unwrap() error { return e.Errors }

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

package errs

import (
	"net/http"
)

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewHTTPError creates a generic HTTP exception with an explicit status.
func NewHTTPError(status int, detail any) *HTTPError {
	return &HTTPError{
		Code:   statusCode(status),
		Status: status,
		Detail: detail,
		kind:   KindHTTP,
	}
}

// NewBadRequestError creates a 400 HTTPError.
func NewBadRequestError(detail any) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, detail)
}

// NewNotFoundError creates a 404 whose detail is {"message": message}.
func NewNotFoundError(message string) *HTTPError {
	return NewNotFoundDetail(map[string]string{"message": message})
}

// NewNotFoundDetail creates a 404 with an arbitrary detail, e.g. a plain string.
func NewNotFoundDetail(detail any) *HTTPError {
	return &HTTPError{
		Code:   statusCode(http.StatusNotFound),
		Status: http.StatusNotFound,
		Detail: detail,
		kind:   KindNotFound,
	}
}

// NewConflictError creates a domain conflict. A zero status means 409; rules that want to answer
// with something more colourful (418, say) pass their own.
func NewConflictError(status int, detail any) *HTTPError {
	if status == 0 {
		status = http.StatusConflict
	}
	return &HTTPError{
		Code:   statusCode(status),
		Status: status,
		Detail: detail,
		kind:   KindConflict,
	}
}

// NewUnauthorizedError creates a 401 carrying the Bearer challenge header.
func NewUnauthorizedError(detail string) *HTTPError {
	return &HTTPError{
		Code:    statusCode(http.StatusUnauthorized),
		Status:  http.StatusUnauthorized,
		Detail:  detail,
		Headers: map[string]string{"WWW-Authenticate": "Bearer"},
		kind:    KindUnauthorized,
	}
}

// NewInternalServerError is the redacted answer to anything the application did not anticipate.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:   statusCode(http.StatusInternalServerError),
		Status: http.StatusInternalServerError,
		Detail: http.StatusText(http.StatusInternalServerError),
		kind:   KindUnhandled,
	}
}

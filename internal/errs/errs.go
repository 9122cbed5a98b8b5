// Package errs defines the error taxonomy of the API and the Mapper that turns any error into
// an HTTP response.
//
// Every error the application raises on purpose carries a Kind. The Mapper keeps one handler per
// kind; when an error reaches the edge of the system it walks the wrap chain (outermost first),
// picks the first kind with a registered handler and lets that handler build status, body and
// headers. Errors with no kind are "unhandled": they are logged in full and answered with a
// redacted 500.
package errs

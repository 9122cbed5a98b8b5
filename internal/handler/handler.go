// Package handler is the HTTP layer of the playground.
//
// Every endpoint is a Route: a binding plan from the validation package, a HandlerFunc that
// receives the bound values, and a response strategy. The router registers the routes and the
// OpenAPI handler documents the same list.
package handler

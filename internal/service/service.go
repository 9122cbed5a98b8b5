// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated instances from the
// handlers, applies the resource rules and turns repository failures into classified errors.
package service

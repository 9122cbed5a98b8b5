// Package model declares the schemas of the playground's resources.
//
// Schemas are package-level values: they are immutable once built and shared by every request.
package model

// Package schema holds declarative field tables and the machinery that turns raw decoded input
// into validated instances.
//
// A Schema is an ordered list of Fields. Validation of a single field goes through four steps in
// a fixed order: absence check, type coercion, constraints in declaration order, and finally the
// optional field check. Schema.Validate runs every field and collects every failure, so a client
// sees all of its mistakes in one response. Schema-level validators run last and only when all
// fields passed.
//
// Merge applies a partial update (an Envelope) onto a stored instance without mutating it.
package schema

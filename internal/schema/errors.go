package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind classifies a validation failure. The value is also the "type" reported to API clients.
type Kind string

const (
	KindMissing         Kind = "missing"
	KindTypeMismatch    Kind = "type_mismatch"
	KindOutOfRange      Kind = "out_of_range"
	KindTooShort        Kind = "too_short"
	KindTooLong         Kind = "too_long"
	KindPatternMismatch Kind = "pattern_mismatch"
	KindInvalidChoice   Kind = "invalid_choice"
	KindPredicate       Kind = "predicate_failed"
	KindExtraForbidden  Kind = "extra_forbidden"
	KindJSONInvalid     Kind = "json_invalid"
	KindSchemaCheck     Kind = "schema_check"
)

// Error is a single field-level (or schema-level) validation failure.
//
// Loc holds the path inside the validated value: field names for objects, ints for list indexes,
// map keys as strings. Source is the request location the value came from ("body", "query", ...)
// and is filled in by the binder; it is empty when a schema is used on its own.
type Error struct {
	Source string
	Loc    []any
	Kind   Kind
	Msg    string
	Input  any

	// Entity names the schema whose schema-level validator rejected the value.
	// Only set for KindSchemaCheck, where Loc is empty.
	Entity string
}

// Path renders Loc as a dotted path, e.g. "item.price" or "image.0.url".
func (e *Error) Path() string {
	parts := make([]string, 0, len(e.Loc))
	for _, seg := range e.Loc {
		switch s := seg.(type) {
		case int:
			parts = append(parts, strconv.Itoa(s))
		default:
			parts = append(parts, fmt.Sprint(s))
		}
	}
	return strings.Join(parts, ".")
}

func (e *Error) Error() string {
	if len(e.Loc) == 0 {
		if e.Entity != "" {
			return e.Entity + ": " + e.Msg
		}
		return e.Msg
	}
	return e.Path() + ": " + e.Msg
}

// MarshalJSON emits the client-facing shape {"loc": [...], "msg": "...", "type": "..."}.
func (e *Error) MarshalJSON() ([]byte, error) {
	loc := make([]any, 0, len(e.Loc)+1)
	if e.Source != "" {
		loc = append(loc, e.Source)
	}
	loc = append(loc, e.Loc...)

	return json.Marshal(struct {
		Loc  []any  `json:"loc"`
		Msg  string `json:"msg"`
		Type Kind   `json:"type"`
	}{Loc: loc, Msg: e.Msg, Type: e.Kind})
}

// Errors is an ordered list of validation failures. It satisfies error so a whole batch can be
// returned through ordinary error plumbing.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Within prefixes every error's location with the given path segments.
func (es Errors) Within(segs ...any) Errors {
	for _, e := range es {
		loc := make([]any, 0, len(segs)+len(e.Loc))
		loc = append(loc, segs...)
		e.Loc = append(loc, e.Loc...)
	}
	return es
}

// From sets the request source of every error that does not have one yet.
func (es Errors) From(source string) Errors {
	for _, e := range es {
		if e.Source == "" {
			e.Source = source
		}
	}
	return es
}

func newError(kind Kind, input any, format string, args ...any) *Error {
	return &Error{Kind: kind, Input: input, Msg: fmt.Sprintf(format, args...)}
}

func missingError() *Error {
	return &Error{Kind: KindMissing, Msg: "Field required"}
}

package schema

import (
	"fmt"
)

// FieldType is the semantic type of a field. Raw input is coerced into the Go
// representation listed next to each constant.
type FieldType string

const (
	TypeInt       FieldType = "int"       // int64
	TypeFloat     FieldType = "float"     // float64
	TypeString    FieldType = "string"    // string
	TypeBool      FieldType = "bool"      // bool
	TypeTimestamp FieldType = "timestamp" // time.Time
	TypeTime      FieldType = "time"      // TimeOfDay
	TypeDuration  FieldType = "duration"  // time.Duration
	TypeUUID      FieldType = "uuid"      // uuid.UUID
	TypeURL       FieldType = "url"       // string (normalized)
	TypeEmail     FieldType = "email"     // string
	TypeEnum      FieldType = "enum"      // string, one of Choices
	TypeObject    FieldType = "object"    // *Instance of Schema
	TypeList      FieldType = "list"      // []any of Elem
	TypeSet       FieldType = "set"       // []any of Elem, deduplicated
	TypeMap       FieldType = "map"       // map[string]any, keys coerced by Key, values by Elem
	TypeFile      FieldType = "file"      // *Upload
	TypeAny       FieldType = "any"       // passthrough
)

// Values holds validated field values by name.
type Values map[string]any

// CheckFunc is a post-validation predicate. It runs after coercion and all constraints
// succeeded; sofar holds the fields of the same schema validated before this one.
type CheckFunc func(value any, sofar Values) error

// Field describes one named value: its type, optionality, default and constraints.
type Field struct {
	Name     string
	Type     FieldType
	Optional bool
	Default  any

	Elem    *Field  // list, set and map values
	Key     *Field  // map keys
	Schema  *Schema // nested object
	Choices []string

	Constraints []Constraint
	Check       CheckFunc
	CheckName   string

	Title       string
	Description string
	Examples    []any
	Deprecated  bool

	hasDefault bool
}

// Option configures a Field at construction time.
type Option func(*Field)

// Required reports whether absence of the field is an error.
// Optional fields and fields with a default are not required.
func (f *Field) Required() bool {
	return !f.Optional && !f.hasDefault
}

// HasDefault reports whether a default was declared (the default itself may be nil).
func (f *Field) HasDefault() bool {
	return f.hasDefault
}

func (f *Field) defaultValue() any {
	return cloneValue(f.Default)
}

func newField(name string, typ FieldType, opts []Option) *Field {
	f := &Field{Name: name, Type: typ}
	for _, opt := range opts {
		opt(f)
	}

	// Defaults are stored in their coerced form so accessors never see a raw int where an int64
	// is expected. An invalid default is a programming error.
	if f.hasDefault && f.Default != nil {
		v, errs := f.coerce(f.Default)
		if len(errs) > 0 {
			panic(fmt.Sprintf("schema: invalid default for field %q: %v", name, errs))
		}
		f.Default = v
	}

	return f
}

func Int(name string, opts ...Option) *Field       { return newField(name, TypeInt, opts) }
func Float(name string, opts ...Option) *Field     { return newField(name, TypeFloat, opts) }
func String(name string, opts ...Option) *Field    { return newField(name, TypeString, opts) }
func Bool(name string, opts ...Option) *Field      { return newField(name, TypeBool, opts) }
func Timestamp(name string, opts ...Option) *Field { return newField(name, TypeTimestamp, opts) }
func Time(name string, opts ...Option) *Field      { return newField(name, TypeTime, opts) }
func Duration(name string, opts ...Option) *Field  { return newField(name, TypeDuration, opts) }
func UUID(name string, opts ...Option) *Field      { return newField(name, TypeUUID, opts) }
func URL(name string, opts ...Option) *Field       { return newField(name, TypeURL, opts) }
func Email(name string, opts ...Option) *Field     { return newField(name, TypeEmail, opts) }
func File(name string, opts ...Option) *Field      { return newField(name, TypeFile, opts) }
func Any(name string, opts ...Option) *Field       { return newField(name, TypeAny, opts) }

// Enum declares a closed string enumeration.
func Enum(name string, choices []string, opts ...Option) *Field {
	return newField(name, TypeEnum, append([]Option{func(f *Field) { f.Choices = choices }}, opts...))
}

// Object declares a nested schema.
func Object(name string, s *Schema, opts ...Option) *Field {
	return newField(name, TypeObject, append([]Option{func(f *Field) { f.Schema = s }}, opts...))
}

// List declares an ordered sequence whose items are validated by elem.
func List(name string, elem *Field, opts ...Option) *Field {
	return newField(name, TypeList, append([]Option{func(f *Field) { f.Elem = elem }}, opts...))
}

// Set declares a sequence of unique items; duplicates are dropped keeping the first occurrence.
func Set(name string, elem *Field, opts ...Option) *Field {
	return newField(name, TypeSet, append([]Option{func(f *Field) { f.Elem = elem }}, opts...))
}

// Map declares a mapping; keys are coerced by key (from their string form) and values by value.
func Map(name string, key, value *Field, opts ...Option) *Field {
	return newField(name, TypeMap, append([]Option{func(f *Field) {
		f.Key = key
		f.Elem = value
	}}, opts...))
}

// Optional allows the field to be absent or null.
func Optional() Option {
	return func(f *Field) { f.Optional = true }
}

// Default sets the value used when the field is absent. The value is coerced like input.
func Default(v any) Option {
	return func(f *Field) {
		f.Default = v
		f.hasDefault = true
	}
}

// Check attaches a named post-validation predicate.
func Check(name string, fn CheckFunc) Option {
	return func(f *Field) {
		f.CheckName = name
		f.Check = fn
	}
}

func Title(title string) Option {
	return func(f *Field) { f.Title = title }
}

func Describe(description string) Option {
	return func(f *Field) { f.Description = description }
}

func Examples(examples ...any) Option {
	return func(f *Field) { f.Examples = append(f.Examples, examples...) }
}

// Deprecated marks the field as deprecated in generated documentation. Binding is unaffected.
func Deprecated() Option {
	return func(f *Field) { f.Deprecated = true }
}

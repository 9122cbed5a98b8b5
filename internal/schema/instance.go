package schema

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Instance is the validated value of one schema together with the names of the fields the
// client explicitly supplied. Instances are request-local; copies are made with Clone or With.
type Instance struct {
	schema *Schema
	values map[string]any
	set    map[string]bool
}

func newInstance(s *Schema) *Instance {
	return &Instance{
		schema: s,
		values: make(map[string]any, len(s.fields)),
		set:    make(map[string]bool, len(s.fields)),
	}
}

// Assemble builds an instance from values that were already validated field by field, e.g. by a
// binder that reads each field from a different request location. Unknown names panic.
func Assemble(s *Schema, values Values, set []string) *Instance {
	inst := newInstance(s)
	for name, v := range values {
		if _, ok := s.index[name]; !ok {
			panic(fmt.Sprintf("schema %s: unknown field %q", s.name, name))
		}
		inst.values[name] = v
	}
	for _, name := range set {
		inst.set[name] = true
	}
	return inst
}

func (i *Instance) Schema() *Schema { return i.schema }

// Get returns the raw validated value of a field (nil for unknown fields).
func (i *Instance) Get(name string) any { return i.values[name] }

// IsSet reports whether the client supplied the field explicitly.
func (i *Instance) IsSet(name string) bool { return i.set[name] }

// FieldsSet lists explicitly supplied fields in declaration order.
func (i *Instance) FieldsSet() []string {
	out := make([]string, 0, len(i.set))
	for _, f := range i.schema.fields {
		if i.set[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}

func (i *Instance) Int(name string) int64 {
	v, _ := i.values[name].(int64)
	return v
}

func (i *Instance) Float(name string) float64 {
	switch v := i.values[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func (i *Instance) String(name string) string {
	v, _ := i.values[name].(string)
	return v
}

func (i *Instance) Bool(name string) bool {
	v, _ := i.values[name].(bool)
	return v
}

func (i *Instance) Time(name string) time.Time {
	v, _ := i.values[name].(time.Time)
	return v
}

func (i *Instance) TimeOfDay(name string) TimeOfDay {
	v, _ := i.values[name].(TimeOfDay)
	return v
}

func (i *Instance) Duration(name string) time.Duration {
	v, _ := i.values[name].(time.Duration)
	return v
}

func (i *Instance) UUID(name string) uuid.UUID {
	v, _ := i.values[name].(uuid.UUID)
	return v
}

func (i *Instance) List(name string) []any {
	v, _ := i.values[name].([]any)
	return v
}

// Strings returns a list of strings; non-string items are skipped.
func (i *Instance) Strings(name string) []string {
	items := i.List(name)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (i *Instance) Object(name string) *Instance {
	v, _ := i.values[name].(*Instance)
	return v
}

func (i *Instance) Map(name string) map[string]any {
	v, _ := i.values[name].(map[string]any)
	return v
}

func (i *Instance) Upload(name string) *Upload {
	v, _ := i.values[name].(*Upload)
	return v
}

func (i *Instance) Uploads(name string) []*Upload {
	items := i.List(name)
	out := make([]*Upload, 0, len(items))
	for _, item := range items {
		if u, ok := item.(*Upload); ok {
			out = append(out, u)
		}
	}
	return out
}

// Clone returns a deep copy.
func (i *Instance) Clone() *Instance {
	c := newInstance(i.schema)
	for k, v := range i.values {
		c.values[k] = cloneValue(v)
	}
	for k, v := range i.set {
		c.set[k] = v
	}
	return c
}

// With returns a copy with one field replaced and marked as set. The value is stored as given
// and is not re-validated. Naming an unknown field panics.
func (i *Instance) With(name string, value any) *Instance {
	if _, ok := i.schema.index[name]; !ok {
		panic(fmt.Sprintf("schema %s: unknown field %q", i.schema.name, name))
	}
	c := i.Clone()
	c.values[name] = cloneValue(value)
	c.set[name] = true
	return c
}

type dumpOptions struct {
	excludeUnset bool
	include      map[string]bool
	exclude      map[string]bool
}

type DumpOption func(*dumpOptions)

// ExcludeUnset drops fields the client did not supply, recursively.
func ExcludeUnset() DumpOption {
	return func(o *dumpOptions) { o.excludeUnset = true }
}

// Include keeps only the named top-level fields.
func Include(names ...string) DumpOption {
	return func(o *dumpOptions) {
		if o.include == nil {
			o.include = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.include[n] = true
		}
	}
}

// Exclude drops the named top-level fields.
func Exclude(names ...string) DumpOption {
	return func(o *dumpOptions) {
		if o.exclude == nil {
			o.exclude = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.exclude[n] = true
		}
	}
}

// Dump converts the instance into plain JSON-friendly values: nested instances become maps,
// durations ISO 8601 strings, uuids and times of day strings, uploads their file name.
func (i *Instance) Dump(opts ...DumpOption) map[string]any {
	var o dumpOptions
	for _, opt := range opts {
		opt(&o)
	}

	out := make(map[string]any, len(i.values))
	for _, f := range i.schema.fields {
		if !i.keep(f.Name, o) {
			continue
		}
		out[f.Name] = plain(i.values[f.Name], o.excludeUnset)
	}
	return out
}

func (i *Instance) keep(name string, o dumpOptions) bool {
	if o.excludeUnset && !i.set[name] {
		return false
	}
	if o.include != nil && !o.include[name] {
		return false
	}
	return !o.exclude[name]
}

func plain(v any, excludeUnset bool) any {
	switch x := v.(type) {
	case *Instance:
		if excludeUnset {
			return x.Dump(ExcludeUnset())
		}
		return x.Dump()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item, excludeUnset)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = plain(item, excludeUnset)
		}
		return out
	case time.Duration:
		return FormatISODuration(x)
	case TimeOfDay:
		return x.String()
	case uuid.UUID:
		return x.String()
	case *Upload:
		return x.Filename
	}
	return v
}

// MarshalJSON writes every field in declaration order.
func (i *Instance) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for n, f := range i.schema.fields {
		if n > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(plain(i.values[f.Name], false))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Instance:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = cloneValue(item)
		}
		return out
	}
	return v
}

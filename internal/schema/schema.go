package schema

import (
	"fmt"
	"sort"
)

// Validator is a schema-level check. It runs only when every field validated successfully.
type Validator struct {
	Name  string
	Check func(*Instance) error
}

// Schema is an ordered, named set of fields. A schema is built once at startup and shared
// read-only afterwards; WithValidator and ForbidExtra must only be used while building it.
type Schema struct {
	name        string
	fields      []*Field
	index       map[string]int
	validators  []Validator
	forbidExtra bool
}

// New builds a schema. Duplicate field names panic.
func New(name string, fields ...*Field) *Schema {
	s := &Schema{
		name:   name,
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %q", name, f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// WithValidator appends a schema-level check.
func (s *Schema) WithValidator(name string, check func(*Instance) error) *Schema {
	s.validators = append(s.validators, Validator{Name: name, Check: check})
	return s
}

// ForbidExtra makes unknown keys a validation error instead of silently dropping them.
func (s *Schema) ForbidExtra() *Schema {
	s.forbidExtra = true
	return s
}

func (s *Schema) Name() string { return s.name }

func (s *Schema) Fields() []*Field { return s.fields }

func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Validate coerces raw (a JSON object) into an instance, collecting every field error.
func (s *Schema) Validate(raw any) (*Instance, Errors) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, Errors{typeError(raw, "Input should be a valid dictionary or object")}
	}

	inst := newInstance(s)
	sofar := make(Values, len(s.fields))
	var errs Errors

	for _, f := range s.fields {
		value, present := obj[f.Name]
		if !present {
			if f.Required() {
				errs = append(errs, Errors{missingError()}.Within(f.Name)...)
				continue
			}
			inst.values[f.Name] = f.defaultValue()
			continue
		}

		// An explicit null is only acceptable for optional fields; it is not the same as absence.
		if value == nil && !f.Optional {
			errs = append(errs, Errors{typeError(nil, "Input should be a valid %s", typeNoun(f))}.Within(f.Name)...)
			continue
		}

		v, fieldErrs := f.validate(value, sofar)
		if len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs.Within(f.Name)...)
			continue
		}
		inst.values[f.Name] = v
		inst.set[f.Name] = true
		sofar[f.Name] = v
	}

	if s.forbidExtra {
		extra := make([]string, 0)
		for k := range obj {
			if _, known := s.index[k]; !known {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			errs = append(errs, &Error{Kind: KindExtraForbidden, Loc: []any{k}, Input: obj[k], Msg: "Extra inputs are not permitted"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	for _, v := range s.validators {
		if err := v.Check(inst); err != nil {
			errs = append(errs, &Error{
				Kind:   KindSchemaCheck,
				Entity: s.name,
				Msg:    fmt.Sprintf("Value error, %s.%s: %s", s.name, v.Name, err),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return inst, nil
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case Values:
		return v, true
	case *Instance:
		// Only explicitly set fields count as present so defaults are re-derived by this schema.
		return v.Dump(ExcludeUnset()), true
	}
	return nil, false
}

func typeNoun(f *Field) string {
	switch f.Type {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeTimestamp:
		return "datetime"
	case TypeObject, TypeMap:
		return "dictionary"
	case TypeEnum:
		return "choice"
	case TypeAny:
		return "value"
	}
	return string(f.Type)
}

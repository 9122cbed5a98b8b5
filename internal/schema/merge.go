package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned when an update touches a field the stored instance does not have.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Envelope is a partial update: the validated update plus the set of fields it touches.
type Envelope struct {
	Update  *Instance
	touched map[string]bool
}

// NewEnvelope touches exactly the fields the client supplied in update.
func NewEnvelope(update *Instance) *Envelope {
	e := &Envelope{Update: update, touched: make(map[string]bool)}
	for _, name := range update.FieldsSet() {
		e.touched[name] = true
	}
	return e
}

// Touch marks additional fields as touched, so their (possibly default) update value is applied.
func (e *Envelope) Touch(names ...string) *Envelope {
	for _, n := range names {
		e.touched[n] = true
	}
	return e
}

// Touched lists touched fields in the update's declaration order.
func (e *Envelope) Touched() []string {
	out := make([]string, 0, len(e.touched))
	for _, f := range e.Update.schema.fields {
		if e.touched[f.Name] {
			out = append(out, f.Name)
		}
	}
	for name := range e.touched {
		if _, ok := e.Update.schema.index[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Merge applies the touched fields of update onto a copy of stored. stored is never modified and
// merging the same envelope twice yields the same result.
func Merge(stored *Instance, update *Envelope) (*Instance, error) {
	out := stored.Clone()

	for _, name := range update.Touched() {
		target, ok := stored.schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not part of %s", ErrSchemaMismatch, name, stored.schema.name)
		}
		source, ok := update.Update.schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not part of %s", ErrSchemaMismatch, name, update.Update.schema.name)
		}
		if source.Type != target.Type {
			return nil, fmt.Errorf("%w: field %q is %s in %s but %s in %s",
				ErrSchemaMismatch, name, source.Type, update.Update.schema.name, target.Type, stored.schema.name)
		}

		out.values[name] = cloneValue(update.Update.values[name])
		out.set[name] = true
	}

	return out, nil
}

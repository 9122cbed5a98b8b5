// Package repository persists the playground's resources.
//
// Documents are stored as JSON and re-validated against their schema when read back, so a
// stored document always comes out as a fully coerced instance with its fields-set preserved.
package repository

import (
	"bytes"
	"context"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// Store keeps instances of one schema addressed by string ids.
type Store interface {
	// Save stores a new document under a generated id.
	Save(ctx context.Context, inst *schema.Instance) (string, error)
	Get(ctx context.Context, id string) (*schema.Instance, error)
	// Replace creates or overwrites the document. Every field counts as set afterwards.
	Replace(ctx context.Context, id string, inst *schema.Instance) error
	// Update merges the envelope into the stored document and returns the result.
	Update(ctx context.Context, id string, env *schema.Envelope) (*schema.Instance, error)
	// Seed stores raw under id unless a document already exists. Only the keys of raw count as set.
	Seed(ctx context.Context, id string, raw map[string]any) error
}

func encode(inst *schema.Instance, opts ...schema.DumpOption) ([]byte, error) {
	data, err := json.Marshal(inst.Dump(opts...))
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", inst.Schema().Name())
	}
	return data, nil
}

func decode(s *schema.Schema, data []byte) (*schema.Instance, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.Name())
	}

	inst, failures := s.Validate(doc)
	if len(failures) > 0 {
		return nil, errors.Wrapf(failures, "stored %s no longer matches its schema", s.Name())
	}
	return inst, nil
}

func seedDocument(s *schema.Schema, raw map[string]any) ([]byte, error) {
	inst, failures := s.Validate(raw)
	if len(failures) > 0 {
		return nil, errors.Wrapf(failures, "invalid %s seed", s.Name())
	}
	return encode(inst, schema.ExcludeUnset())
}

func merge(stored *schema.Instance, env *schema.Envelope) (*schema.Instance, []byte, error) {
	merged, err := schema.Merge(stored, env)
	if err != nil {
		return nil, nil, err
	}
	data, err := encode(merged)
	if err != nil {
		return nil, nil, err
	}
	return merged, data, nil
}

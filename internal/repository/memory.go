package repository

import (
	"context"
	"sync"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryStore is a Store backed by a map. It is used when no database is configured.
type MemoryStore struct {
	schema *schema.Schema

	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore(s *schema.Schema) *MemoryStore {
	return &MemoryStore{schema: s, docs: make(map[string][]byte)}
}

func (m *MemoryStore) Save(_ context.Context, inst *schema.Instance) (string, error) {
	data, err := encode(inst)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.docs[id] = data
	m.mu.Unlock()
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*schema.Instance, error) {
	m.mu.RLock()
	data, ok := m.docs[id]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s %q", m.schema.Name(), id)
	}
	return decode(m.schema, data)
}

func (m *MemoryStore) Replace(_ context.Context, id string, inst *schema.Instance) error {
	data, err := encode(inst)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.docs[id] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, id string, env *schema.Envelope) (*schema.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.docs[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s %q", m.schema.Name(), id)
	}

	stored, err := decode(m.schema, data)
	if err != nil {
		return nil, err
	}

	merged, data, err := merge(stored, env)
	if err != nil {
		return nil, err
	}
	m.docs[id] = data
	return merged, nil
}

func (m *MemoryStore) Seed(_ context.Context, id string, raw map[string]any) error {
	data, err := seedDocument(m.schema, raw)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; !exists {
		m.docs[id] = data
	}
	return nil
}

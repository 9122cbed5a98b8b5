package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededTotems(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(model.Totem)
	for id, raw := range model.TotemSeeds {
		require.NoError(t, store.Seed(context.Background(), id, raw))
	}
	return store
}

func TestMemoryStore_SeedKeepsFieldsSet(t *testing.T) {
	store := seededTotems(t)

	foo, err := store.Get(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "price"}, foo.FieldsSet())
	assert.Equal(t, 10.5, foo.Float("tax"))

	require.NoError(t, store.Seed(context.Background(), "foo", map[string]any{"name": "Other"}))
	foo, err = store.Get(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo", foo.String("name"))
}

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore(model.Totem).Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_ReplaceSetsEveryField(t *testing.T) {
	store := seededTotems(t)
	inst, failures := model.Totem.Validate(map[string]any{"name": "Qux", "price": 1.5})
	require.Empty(t, failures)

	require.NoError(t, store.Replace(context.Background(), "qux", inst))

	got, err := store.Get(context.Background(), "qux")
	require.NoError(t, err)
	assert.Len(t, got.FieldsSet(), 5)
	assert.Equal(t, "Qux", got.String("name"))
}

func TestMemoryStore_Update(t *testing.T) {
	store := seededTotems(t)
	ctx := context.Background()

	update, failures := model.Totem.Validate(map[string]any{"tags": []any{"a", "b"}})
	require.Empty(t, failures)

	merged, err := store.Update(ctx, "bar", schema.NewEnvelope(update))
	require.NoError(t, err)
	assert.Equal(t, "Bar", merged.String("name"))
	assert.Equal(t, "The bartenders", merged.String("description"))
	assert.Equal(t, 62.0, merged.Float("price"))
	assert.Equal(t, 20.2, merged.Float("tax"))
	assert.Equal(t, []string{"a", "b"}, merged.Strings("tags"))

	again, err := store.Get(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, merged.Dump(), again.Dump())

	_, err = store.Update(ctx, "missing", schema.NewEnvelope(update))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_SaveAndConcurrentUpdates(t *testing.T) {
	store := NewMemoryStore(model.Totem)
	ctx := context.Background()

	inst, failures := model.Totem.Validate(map[string]any{"name": "Counter"})
	require.Empty(t, failures)
	id, err := store.Save(ctx, inst)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			update, _ := model.Totem.Validate(map[string]any{"price": float64(i)})
			_, err := store.Update(ctx, id, schema.NewEnvelope(update))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Counter", got.String("name"))
}

func TestSeed_Invalid(t *testing.T) {
	err := NewMemoryStore(model.Totem).Seed(context.Background(), "bad", map[string]any{"price": "cheap"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Totem seed")
}

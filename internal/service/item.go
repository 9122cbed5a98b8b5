package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/lib/utils"
	"github.com/deppfellow/apiplayground/internal/repository"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/pkg/errors"
)

// ItemService keeps item prices in the key/value store, keyed by the normalized item name.
type ItemService struct {
	kv repository.KV
}

func NewItemService(kv repository.KV) *ItemService {
	return &ItemService{kv: kv}
}

// Normalize title-cases the trimmed name and repeats the description times times.
func (s *ItemService) Normalize(item *schema.Instance, times int) *schema.Instance {
	return item.
		With("name", utils.Title(strings.TrimSpace(item.String("name")))).
		With("description", utils.RepeatJoin(item.String("description"), times))
}

// CacheItem stores the price of item under its normalized name.
func (s *ItemService) CacheItem(ctx context.Context, item *schema.Instance) (map[string]any, error) {
	item = s.Normalize(item, 3)
	name := item.String("name")
	price := item.Float("price")

	if err := s.kv.Set(ctx, name, strconv.FormatFloat(price, 'f', -1, 64)); err != nil {
		return nil, err
	}
	return map[string]any{"status": "ok", name: price}, nil
}

func (s *ItemService) Lookup(ctx context.Context, key string) (map[string]any, error) {
	value, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": "ok", key: value}, nil
}

func (s *ItemService) Pop(ctx context.Context, key string) (map[string]any, error) {
	value, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return nil, err
	}
	return map[string]any{"status": "delete", key: value}, nil
}

func (s *ItemService) get(ctx context.Context, key string) (string, error) {
	value, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && value == "") {
		return "", errs.NewNotFoundDetail(fmt.Sprintf("Key %s is absent.", key))
	}
	return value, err
}

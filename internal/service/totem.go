package service

import (
	"context"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/repository"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type TotemService struct {
	store repository.Store
}

func NewTotemService(store repository.Store) *TotemService {
	return &TotemService{store: store}
}

// Seed stores the initial totems that are not there yet.
func (s *TotemService) Seed(ctx context.Context) error {
	for id, raw := range model.TotemSeeds {
		if err := s.store.Seed(ctx, id, raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *TotemService) Get(ctx context.Context, id string) (*schema.Instance, error) {
	totem, err := s.store.Get(ctx, id)
	return totem, notFound(err, "Totem not found")
}

// Replace stores totem under id as given, creating it if needed.
func (s *TotemService) Replace(ctx context.Context, id string, totem *schema.Instance) (*schema.Instance, error) {
	if err := s.store.Replace(ctx, id, totem); err != nil {
		return nil, err
	}
	return totem, nil
}

// Patch applies the fields the client supplied in update and returns the merged totem.
func (s *TotemService) Patch(ctx context.Context, id string, update *schema.Instance) (*schema.Instance, error) {
	merged, err := s.store.Update(ctx, id, schema.NewEnvelope(update))
	return merged, notFound(err, "Totem not found")
}

// Create adds the tax to the price before storing the totem.
func (s *TotemService) Create(ctx context.Context, totem *schema.Instance) (*schema.Instance, error) {
	gross := decimal.NewFromFloat(totem.Float("price")).Add(decimal.NewFromFloat(totem.Float("tax")))
	created := totem.With("price", gross.InexactFloat64())

	if _, err := s.store.Save(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// notFound turns repository.ErrNotFound into a 404 with the given message.
func notFound(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NewNotFoundError(message)
	}
	return err
}

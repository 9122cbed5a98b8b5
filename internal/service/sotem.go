package service

import (
	"context"

	"github.com/deppfellow/apiplayground/internal/repository"
	"github.com/deppfellow/apiplayground/internal/schema"
)

type SotemService struct {
	store repository.Store
}

func NewSotemService(store repository.Store) *SotemService {
	return &SotemService{store: store}
}

func (s *SotemService) Put(ctx context.Context, id string, sotem *schema.Instance) (*schema.Instance, error) {
	if err := s.store.Replace(ctx, id, sotem); err != nil {
		return nil, err
	}
	return sotem, nil
}

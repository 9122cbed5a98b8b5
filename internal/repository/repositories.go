package repository

import (
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/server"
)

// Repositories picks a backend per resource: Postgres and Redis when the server has them,
// in-process maps otherwise.
type Repositories struct {
	Totems Store
	Sotems Store
	Items  KV
	Users  *UserRepository
}

func NewRepositories(s *server.Server) (*Repositories, error) {
	users, err := NewUserRepository(s.Config.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	repos := &Repositories{Users: users}

	if s.DB != nil {
		repos.Totems = NewPostgresStore(s.DB.Pool, "totems", model.Totem)
		repos.Sotems = NewPostgresStore(s.DB.Pool, "sotems", model.Sotem)
	} else {
		repos.Totems = NewMemoryStore(model.Totem)
		repos.Sotems = NewMemoryStore(model.Sotem)
	}

	if s.Redis != nil {
		repos.Items = NewRedisKV(s.Redis)
	} else {
		repos.Items = NewMemoryKV()
	}

	return repos, nil
}

package service

import (
	"context"
	"net/http"

	"github.com/deppfellow/apiplayground/internal/errs"
	"github.com/deppfellow/apiplayground/internal/model"
	"github.com/deppfellow/apiplayground/internal/repository"
	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/pkg/errors"
)

// AuthService authenticates against the in-process account store. The access token is the
// username itself.
type AuthService struct {
	users *repository.UserRepository
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Login returns the token response for valid credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (map[string]string, error) {
	account, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, errs.NewBadRequestError("Incorrect username or password")
	}
	return map[string]string{"access_token": account.Username, "token_type": "bearer"}, nil
}

// CurrentUser resolves a bearer token to an account.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (repository.Account, error) {
	account, err := s.users.Get(ctx, token)
	if err != nil {
		return repository.Account{}, errs.NewUnauthorizedError("Invalid authentication credentials")
	}
	return account, nil
}

// CurrentActiveUser is CurrentUser that rejects disabled accounts with a 400.
func (s *AuthService) CurrentActiveUser(ctx context.Context, token string) (*schema.Instance, error) {
	account, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if account.Disabled {
		return nil, errs.NewBadRequestError("Inactive user")
	}
	return accountInstance(account), nil
}

// Register stores a new user with a hashed password and returns its public view.
func (s *AuthService) Register(ctx context.Context, in *schema.Instance) (*schema.Instance, error) {
	account, err := s.users.Create(ctx, repository.Account{
		Username: in.String("username"),
		Email:    in.String("email"),
		FullName: in.String("full_name"),
	}, in.String("password"))
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, errs.NewConflictError(http.StatusConflict, "Username already registered")
	}
	if err != nil {
		return nil, err
	}

	values := schema.Values{
		"username":  account.Username,
		"email":     account.Email,
		"full_name": optional(account.FullName),
	}
	return schema.Assemble(model.UserOut, values, in.FieldsSet()), nil
}

func accountInstance(a repository.Account) *schema.Instance {
	return schema.Assemble(model.Account, schema.Values{
		"username":  a.Username,
		"email":     optional(a.Email),
		"full_name": optional(a.FullName),
		"disabled":  a.Disabled,
	}, []string{"username", "email", "full_name", "disabled"})
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

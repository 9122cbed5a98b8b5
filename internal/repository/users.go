package repository

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Account struct {
	Username       string
	Email          string
	FullName       string
	Disabled       bool
	HashedPassword []byte
}

// UserRepository is an in-process account store with bcrypt-hashed passwords.
type UserRepository struct {
	cost int

	mu       sync.RWMutex
	accounts map[string]Account
}

// NewUserRepository seeds the demo accounts johndoe (active) and alice (disabled).
func NewUserRepository(cost int) (*UserRepository, error) {
	r := &UserRepository{cost: cost, accounts: make(map[string]Account)}

	seeds := []struct {
		account  Account
		password string
	}{
		{Account{Username: "johndoe", FullName: "John Doe", Email: "johndoe@example.com"}, "secret"},
		{Account{Username: "alice", FullName: "Alice Wonderson", Email: "alice@example.com", Disabled: true}, "secret2"},
	}
	for _, s := range seeds {
		if _, err := r.Create(context.Background(), s.account, s.password); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Create hashes password and stores the account. Existing usernames are rejected.
func (r *UserRepository) Create(_ context.Context, account Account, password string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return Account{}, errors.Wrap(err, "hash password")
	}
	account.HashedPassword = hash

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Username]; exists {
		return Account{}, errors.Wrapf(ErrAlreadyExists, "user %q", account.Username)
	}
	r.accounts[account.Username] = account
	return account, nil
}

func (r *UserRepository) Get(_ context.Context, username string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[username]
	if !ok {
		return Account{}, errors.Wrapf(ErrNotFound, "user %q", username)
	}
	return account, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown user or a wrong password alike.
func (r *UserRepository) Authenticate(ctx context.Context, username, password string) (Account, error) {
	account, err := r.Get(ctx, username)
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.HashedPassword, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

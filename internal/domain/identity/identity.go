// Package identity resolves registration and login against the user store.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
)

// Signer issues bearer tokens for an authenticated identity.
type Signer interface {
	Sign(userID, handle string) (string, error)
}

// Session is the outcome of a successful login.
type Session struct {
	Token  string
	UserID string
	Handle string
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithBcryptCost sets the bcrypt work factor.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			m.cost = cost
		}
	}
}

// WithClock sets the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager implements the identity store semantics: unique handles, salted
// bcrypt credentials, opaque bearer tokens on login.
type Manager struct {
	store  repository.Store
	signer Signer
	cost   int
	now    func() time.Time
}

// NewManager creates a manager bound to a store and token signer.
func NewManager(store repository.Store, signer Signer, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		signer: signer,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Register creates a user with a hashed credential. The plaintext password
// is discarded immediately after hashing and is never logged.
func (m *Manager) Register(ctx context.Context, handle, password string) (model.User, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.TrimSpace(password) == "" {
		return model.User{}, ErrBlankCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return model.User{}, ErrHashFailed
	}

	u := model.User{
		ID:             uuid.NewString(),
		Handle:         handle,
		CredentialHash: hash,
		CreatedAt:      m.now().UTC(),
	}
	if err := m.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateHandle) {
			return model.User{}, ErrDuplicateHandle
		}
		return model.User{}, err
	}
	return u, nil
}

// Login verifies credentials and returns a signed session. Unknown handle
// and wrong password are indistinguishable to the caller.
func (m *Manager) Login(ctx context.Context, handle, password string) (Session, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := m.store.UserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.CredentialHash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	tok, err := m.signer.Sign(u.ID, u.Handle)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, UserID: u.ID, Handle: u.Handle}, nil
}

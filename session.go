package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// SessionBinding maps an opaque session handle to an account. It is a
// relation only: established on successful registration, consulted by every
// my-resource operation, cleared on account deletion.
type SessionBinding struct {
	AccountID uuid.UUID    `json:"account_id"`
	Email     string       `json:"mail"`
	Strategy  AuthStrategy `json:"strategy"`
	IssuedAt  *time.Time   `json:"issued_at,omitempty"`
}

// SessionStore owns SessionBinding lifecycles. The session mechanism itself
// (cookies, tokens) is established outside this package; the store only maps
// its handle to an account.
type SessionStore interface {
	Bind(ctx context.Context, handle string, binding SessionBinding) error
	Resolve(ctx context.Context, handle string) (SessionBinding, error)
	Clear(ctx context.Context, handle string) error
}

// MemorySessionStore keeps bindings in process. Bindings are owned per
// session and never shared across sessions.
type MemorySessionStore struct {
	mu       sync.RWMutex
	bindings map[string]SessionBinding
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		bindings: map[string]SessionBinding{},
	}
}

func (s *MemorySessionStore) Bind(_ context.Context, handle string, binding SessionBinding) error {
	if handle == "" {
		return ErrNoEmptyString
	}

	if binding.IssuedAt == nil {
		now := time.Now()
		binding.IssuedAt = &now
	}

	s.mu.Lock()
	s.bindings[handle] = binding
	s.mu.Unlock()

	return nil
}

func (s *MemorySessionStore) Resolve(_ context.Context, handle string) (SessionBinding, error) {
	s.mu.RLock()
	binding, ok := s.bindings[handle]
	s.mu.RUnlock()

	if !ok {
		return SessionBinding{}, ErrNoSessionBinding
	}

	return binding, nil
}

func (s *MemorySessionStore) Clear(_ context.Context, handle string) error {
	s.mu.Lock()
	delete(s.bindings, handle)
	s.mu.Unlock()

	return nil
}

// ResolveAccount maps the caller's session handle to the canonical account
// record. A cleared binding, or a binding whose account no longer exists,
// fails with ErrNoSessionBinding.
func ResolveAccount(ctx context.Context, store SessionStore, repo RepositoryManager, handle string) (*Account, error) {
	binding, err := store.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}

	account, err := repo.Accounts().GetByID(ctx, binding.AccountID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrNoSessionBinding
		}
		return nil, err
	}

	return account, nil
}

// BindingFromClaims hydrates a SessionBinding from externally issued JWT
// claims so token based sessions resolve through the same path as handle
// based ones. The subject claim carries the account id.
func BindingFromClaims(claims jwt.Claims) (*SessionBinding, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, ErrUnableToMapClaims
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrUnableToMapClaims
	}

	binding := &SessionBinding{
		AccountID: id,
		Strategy:  StrategyDefault,
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		binding.IssuedAt = &iat.Time
	}

	if mp, ok := claims.(jwt.MapClaims); ok {
		if mail, ok := mp["mail"].(string); ok {
			binding.Email = mail
		}
		if strategy, ok := mp["strategy"].(string); ok {
			binding.Strategy = strategy
		}
	}

	return binding, nil
}

// GetRouterBinding extracts the session binding a JWT middleware left in the
// router locals under key.
func GetRouterBinding(c router.Context, key string) (*SessionBinding, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrNoSessionBinding
	}

	token, ok := raw.(*jwt.Token)
	if token == nil || !ok {
		return nil, ErrUnableToDecodeSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if claims == nil || !ok {
		return nil, ErrUnableToMapClaims
	}

	return BindingFromClaims(claims)
}

// String implements fmt.Stringer without leaking the mail address in full
func (b SessionBinding) String() string {
	return fmt.Sprintf("account=%s strategy=%s", b.AccountID, b.Strategy)
}

package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// UserProvider verifies credentials against an IdentityStore
type UserProvider struct {
	store   IdentityStore
	hasher  *Hasher
	logger  Logger
	metrics *Metrics
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store IdentityStore, hasher *Hasher) *UserProvider {
	if hasher == nil {
		hasher = NewHasher(passwordHashCost())
	}
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithMetrics enables hash timing
func (u *UserProvider) WithMetrics(m *Metrics) *UserProvider {
	u.metrics = m
	return u
}

// VerifyIdentity will find the user by email and compare the password.
// An unknown email and a wrong password both return ErrInvalidCredentials
// after the same amount of hashing work.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (*User, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrIdentityNotFound) {
			return nil, storeError(err, "failed to retrieve user during verification")
		}
		u.compare(password, u.hasher.DummyHash())
		return nil, ErrInvalidCredentials
	}

	if !u.compare(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.Role.IsValid() {
		u.logger.Error("user %d has an unknown role %q", user.ID, user.Role)
		return nil, errors.New("user has an unknown or invalid role", errors.CategoryInternal).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": user.Role, "user_id": user.ID})
	}

	return user, nil
}

func (u *UserProvider) compare(password, hash string) bool {
	start := time.Now()
	ok := u.hasher.Verify(password, hash)
	u.metrics.ObserveHash(time.Since(start))
	return ok
}

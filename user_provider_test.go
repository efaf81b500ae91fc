package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/osnetwork/go-auth"
)

func TestUserProvider_VerifyIdentity(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)
	hash, err := hasher.HashPassword("pw1")
	require.NoError(t, err)

	stored := &auth.User{ID: 5, Email: "ana@example.com", PasswordHash: hash, Role: auth.RoleCoach}

	tests := []struct {
		name     string
		setup    func(*MockIdentityStore)
		email    string
		password string
		wantErr  error
	}{
		{
			name: "match",
			setup: func(s *MockIdentityStore) {
				s.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
			},
			email:    "ana@example.com",
			password: "pw1",
		},
		{
			name: "wrong password",
			setup: func(s *MockIdentityStore) {
				s.On("FindByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
			},
			email:    "ana@example.com",
			password: "nope",
			wantErr:  auth.ErrInvalidCredentials,
		},
		{
			name: "unknown email",
			setup: func(s *MockIdentityStore) {
				s.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, auth.ErrIdentityNotFound)
			},
			email:    "ghost@example.com",
			password: "pw1",
			wantErr:  auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockIdentityStore)
			tt.setup(store)

			user, err := auth.NewUserProvider(store, hasher).
				WithLogger(&MockLogger{}).
				VerifyIdentity(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(5), user.ID)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestUserProvider_InvalidStoredRole(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)
	hash, err := hasher.HashPassword("pw1")
	require.NoError(t, err)

	store := new(MockIdentityStore)
	store.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(&auth.User{ID: 5, PasswordHash: hash, Role: "superuser"}, nil)

	_, err = auth.NewUserProvider(store, hasher).
		WithLogger(&MockLogger{}).
		VerifyIdentity(context.Background(), "ana@example.com", "pw1")

	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
}

func TestHasher_DummyHashIsStable(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	dummy := hasher.DummyHash()
	assert.Equal(t, dummy, hasher.DummyHash())
	assert.False(t, hasher.Verify("", dummy))

	cost, err := bcrypt.Cost([]byte(dummy))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost, "the dummy costs as much as a real record")
}

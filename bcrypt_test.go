package auth_test

import (
	"strings"
	"testing"

	"github.com/osnetwork/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  auth.ErrNoEmptyString, // bcrypt can hash empty strings!
		},
		{
			name:     "Password over bcrypt limit",
			password: strings.Repeat("a", 73),
			wantErr:  auth.ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotContains(t, hash, tt.password)
			assert.NoError(t, hasher.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPassword_SaltPerCall(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	hash1, err := hasher.HashPassword("p1")
	require.NoError(t, err)
	hash2, err := hasher.HashPassword("p1")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, hasher.Verify("p1", hash1))
	assert.True(t, hasher.Verify("p1", hash2))
}

func TestComparePasswordAndHash(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)
	password := "testPassword123!"
	hash, err := hasher.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
		{
			name:     "Empty hash",
			password: password,
			hash:     "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
				assert.False(t, hasher.Verify(tt.password, tt.hash))
				return
			}
			assert.NoError(t, err)
			assert.True(t, hasher.Verify(tt.password, tt.hash))
		})
	}
}

func TestComparePasswordAndHash_NoTruncation(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)
	password := strings.Repeat("a", auth.MaxPasswordBytes)

	hash, err := hasher.HashPassword(password)
	require.NoError(t, err)

	assert.True(t, hasher.Verify(password, hash))
	assert.False(t, hasher.Verify(password+"zzz", hash))
	assert.ErrorIs(t, hasher.ComparePasswordAndHash(password+"z", hash), auth.ErrMismatchedHashAndPassword)
}

func TestNewHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, auth.NewHasher(bcrypt.MinCost).Cost())
	assert.NotEqual(t, 0, auth.NewHasher(0).Cost())
	assert.NotEqual(t, 99, auth.NewHasher(99).Cost())
}

func TestHasher_DummyHash(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)

	dummy := hasher.DummyHash()
	assert.NotEmpty(t, dummy)
	assert.Equal(t, dummy, hasher.DummyHash())
	assert.False(t, hasher.Verify("", dummy))
	assert.False(t, hasher.Verify("password", dummy))
}

func TestPackageLevelHashHelpers(t *testing.T) {
	hash, err := auth.HashPassword("p1")
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePasswordAndHash("p1", hash))
	assert.ErrorIs(t, auth.ComparePasswordAndHash("p2", hash), auth.ErrMismatchedHashAndPassword)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, jti, expiresAt, err := Sign("user-1", []string{"User", "Administrator"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, jti, claims.JWTID)
	assert.True(t, claims.HasRole("Administrator"))
	assert.False(t, claims.HasRole("Auditor"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, _, _, err := Sign("user-1", nil)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	_, err = Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := Verify("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestTTLFromEnv(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "2h")
	assert.Equal(t, 2*time.Hour, parseTTL())

	t.Setenv("JWT_EXPIRES_IN", "garbage")
	assert.Equal(t, 24*time.Hour, parseTTL())
}

package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = Options{Secret: []byte("unit-test-secret"), Alg: "HS256", TTL: time.Hour}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	token, hash, exp, err := Generate(testOpts, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, HashToken(token), hash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := Verify(testOpts, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, _, err := Generate(testOpts, "user-1")
	require.NoError(t, err)

	_, err = Verify(Options{Secret: []byte("other"), Alg: "HS256"}, token)
	assert.Error(t, err)
	assert.False(t, IsExpired(err))
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Now()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "user-1",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString(testOpts.Secret)
	require.NoError(t, err)

	_, err = Verify(testOpts, signed)
	require.Error(t, err)
	assert.True(t, IsExpired(err), "expiry must be distinguishable from other failures")
}

func TestVerifyRejectsNoneAlg(t *testing.T) {
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"sub": "user-1"})
	signed, err := tok.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Verify(testOpts, signed)
	assert.Error(t, err)
}

func TestUnsupportedAlg(t *testing.T) {
	_, _, _, err := Generate(Options{Secret: []byte("x"), Alg: "RS256"}, "u")
	assert.Error(t, err)
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("abc")
	assert.Equal(t, a, HashToken("abc"))
	assert.NotEqual(t, a, HashToken("abd"))
	assert.Contains(t, a, "sha256:")
}

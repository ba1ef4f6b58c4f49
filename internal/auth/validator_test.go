package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-key-must-be-at-least-32-chars-long-for-hmac"
	testIssuer   = "secretstore-idp"
	testAudience = "secretstore-api"
)

// Helper function to create a valid JWT token for testing
func createTestToken(secret string, claims *CustomClaims, exp time.Time) string {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.Subject,
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

func newTestValidator(skew time.Duration) *HS256Validator {
	return NewHS256Validator([]byte(testSecret), testIssuer, testAudience, skew)
}

func TestHS256Validator_ValidToken(t *testing.T) {
	validator := newTestValidator(60 * time.Second)

	claims := &CustomClaims{Username: "alice"}
	claims.Subject = "user-67890"
	token := createTestToken(testSecret, claims, time.Now().Add(1*time.Hour))

	result, err := validator.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "user-67890", result.UserID())
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, testIssuer, result.Issuer)
}

func TestHS256Validator_InvalidSignature(t *testing.T) {
	validator := newTestValidator(60 * time.Second)

	// Create token with different secret
	wrongSecret := "wrong-secret-key-must-be-at-least-32-chars-long"
	claims := &CustomClaims{Username: "alice"}
	claims.Subject = "user-67890"
	token := createTestToken(wrongSecret, claims, time.Now().Add(1*time.Hour))

	result, err := validator.Validate(token)

	require.Error(t, err)
	assert.Nil(t, result)

	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureInvalidSignature, authErr.Reason)
}

func TestHS256Validator_ExpiredToken(t *testing.T) {
	validator := newTestValidator(5 * time.Second) // Short clock skew

	// Expired 10 seconds ago, beyond clock skew
	claims := &CustomClaims{Username: "alice"}
	claims.Subject = "user-67890"
	token := createTestToken(testSecret, claims, time.Now().Add(-10*time.Second))

	result, err := validator.Validate(token)

	require.Error(t, err)
	assert.Nil(t, result)

	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureTokenExpired, authErr.Reason)
}

func TestHS256Validator_ExpiredTokenWithinClockSkew(t *testing.T) {
	validator := newTestValidator(60 * time.Second)

	// Expired 30 seconds ago, within clock skew
	claims := &CustomClaims{Username: "alice"}
	claims.Subject = "user-67890"
	token := createTestToken(testSecret, claims, time.Now().Add(-30*time.Second))

	result, err := validator.Validate(token)

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "user-67890", result.UserID())
}

func TestHS256Validator_MissingSubject(t *testing.T) {
	validator := newTestValidator(60 * time.Second)

	claims := &CustomClaims{Username: "alice"}
	token := createTestToken(testSecret, claims, time.Now().Add(1*time.Hour))

	result, err := validator.Validate(token)

	require.Error(t, err)
	assert.Nil(t, result)

	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureUnknown, authErr.Reason)
}

func TestHS256Validator_WrongIssuer(t *testing.T) {
	validator := NewHS256Validator([]byte(testSecret), "other-idp", testAudience, 60*time.Second)

	claims := &CustomClaims{Username: "alice"}
	claims.Subject = "user-67890"
	token := createTestToken(testSecret, claims, time.Now().Add(1*time.Hour))

	result, err := validator.Validate(token)

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestHS256Validator_MalformedToken(t *testing.T) {
	validator := newTestValidator(60 * time.Second)

	result, err := validator.Validate("not.a.valid.jwt.token")

	require.Error(t, err)
	assert.Nil(t, result)

	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureUnknown, authErr.Reason)
}

func TestHS256Validator_WrongAlgorithm(t *testing.T) {
	validator := newTestValidator(60 * time.Second)

	// Unsigned token
	claims := &CustomClaims{Username: "alice"}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   "user-67890",
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	result, err := validator.Validate(tokenString)

	require.Error(t, err)
	assert.Nil(t, result)

	authErr, ok := IsAuthError(err)
	require.True(t, ok)
	assert.Equal(t, AuthFailureUnknown, authErr.Reason)
}

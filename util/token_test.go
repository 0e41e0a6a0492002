package util

import (
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParsePrincipalToken(t *testing.T) {
	SetJWTSecret("test-secret-123")

	issued, err := IssuePrincipalToken(model.Principal{Role: model.RoleDoctor, SubjectID: 12, Email: "doc@example.com"}, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.Principal.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	p, err := ParsePrincipalToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, p.Role)
	assert.Equal(t, uint(12), p.SubjectID)
	assert.Equal(t, "doc@example.com", p.Email)
	assert.Equal(t, issued.Principal.SessionID, p.SessionID)
}

func TestParsePrincipalToken_WrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	issued, err := IssuePrincipalToken(model.Principal{Role: model.RolePatient, SubjectID: 1}, time.Hour)
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ParsePrincipalToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParsePrincipalToken_Expired(t *testing.T) {
	SetJWTSecret("test-secret-123")
	issued, err := IssuePrincipalToken(model.Principal{Role: model.RolePatient, SubjectID: 1}, -time.Minute)
	require.NoError(t, err)

	_, err = ParsePrincipalToken(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParsePrincipalToken_UnknownRole(t *testing.T) {
	SetJWTSecret("test-secret-123")
	claims := PrincipalClaims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-123"))
	require.NoError(t, err)

	_, err = ParsePrincipalToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParsePrincipalToken_RejectsOtherAlgorithms(t *testing.T) {
	SetJWTSecret("test-secret-123")
	claims := PrincipalClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "0",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-123"))
	require.NoError(t, err)

	_, err = ParsePrincipalToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuePrincipalToken_NoSecret(t *testing.T) {
	SetJWTSecret("")
	defer SetJWTSecret("test-secret-123")

	_, err := IssuePrincipalToken(model.Principal{Role: model.RoleAdmin}, time.Hour)
	assert.ErrorIs(t, err, ErrSecretNotProvided)
}

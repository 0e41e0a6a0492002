package util

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrSecretNotProvided = errors.New("jwt secret not configured")
)

// PrincipalClaims is the JWT payload for every console.
type PrincipalClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token and the session it opened.
type IssuedToken struct {
	Token     string          `json:"token"`
	Principal model.Principal `json:"principal"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IssuePrincipalToken signs a token for p. Each token gets its own session id (jti).
func IssuePrincipalToken(p model.Principal, ttl time.Duration) (IssuedToken, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return IssuedToken{}, ErrSecretNotProvided
	}

	now := time.Now()
	p.SessionID = uuid.NewString()
	expiresAt := now.Add(ttl)

	claims := PrincipalClaims{
		Role:  string(p.Role),
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.SessionID,
			Subject:   strconv.FormatUint(uint64(p.SubjectID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Principal: p, ExpiresAt: expiresAt}, nil
}

// ParsePrincipalToken verifies the signature and expiry and returns the caller.
func ParsePrincipalToken(tokenString string) (model.Principal, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return model.Principal{}, ErrSecretNotProvided
	}

	claims := &PrincipalClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	subject, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return model.Principal{
		Role:      role,
		SubjectID: uint(subject),
		Email:     claims.Email,
		SessionID: claims.ID,
	}, nil
}

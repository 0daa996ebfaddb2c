package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by access tokens. Subject is the
// user's email address.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses access tokens with an HMAC secret.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer creates a TokenIssuer. expireMinutes bounds token lifetime.
func NewTokenIssuer(secret string, expireMinutes int) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	return &TokenIssuer{
		secret: []byte(secret),
		expiry: time.Duration(expireMinutes) * time.Minute,
	}, nil
}

// Issue creates a signed HS256 token for the given user email.
func (t *TokenIssuer) Issue(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token string and returns the subject email.
func (t *TokenIssuer) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// NewVerificationCode returns a 12-character hex code used for email
// verification and password resets.
func NewVerificationCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCookie is returned for cookie values that fail verification.
var ErrInvalidCookie = errors.New("invalid session cookie")

// Codec signs session identifiers for use as cookie values. The identifier is
// the token's only claim and is never interpreted beyond lookup.
type Codec struct {
	secret []byte
}

// NewCodec returns a Codec signing with secret.
func NewCodec(secret string) Codec {
	return Codec{secret: []byte(secret)}
}

// Encode returns the signed cookie value for a session id.
func (c Codec) Encode(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: sessionID})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies value and returns the session id it carries.
func (c Codec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the bearer tokens the backend issues.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// User maps the claims to a session user. The subject is required.
func (c *Claims) User() (*User, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrMalformedToken)
	}
	return &User{ID: c.Subject, Email: c.Email, Name: c.Name}, nil
}

// TokenParser turns a persisted token into the user it identifies. Failures
// wrap ErrMalformedToken or ErrExpiredToken; implementations never panic.
type TokenParser interface {
	ParseUser(token string) (*User, error)
}

// PayloadParser reads the payload segment of a JWT without checking its
// signature. It is used when tokens come from a remote API whose signing key
// this process does not hold; the API still verifies every request.
type PayloadParser struct {
	// Now is the clock used for expiry checks; time.Now when nil.
	Now func() time.Time
}

func (p PayloadParser) ParseUser(token string) (*User, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	if claims.ExpiresAt != nil && !now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}
	return claims.User()
}

// classifyJWTError maps golang-jwt validation errors to the session sentinels.
func classifyJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return fmt.Errorf("%w: %v", ErrMalformedToken, err)
}

// HMACParser verifies HS256 tokens signed with a shared secret.
type HMACParser struct {
	Secret []byte
	Issuer string
}

func (p HMACParser) ParseUser(token string) (*User, error) {
	claims, err := p.Parse(token)
	if err != nil {
		return nil, err
	}
	return claims.User()
}

// Parse validates signature, expiry and issuer and returns the claims.
func (p HMACParser) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if p.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.Issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.Secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyJWTError(err)
	}
	return &claims, nil
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// TokenIssuer is the iss claim of every token this service signs.
const TokenIssuer = "foxxtalk"

// Issuer signs bearer tokens and records them in the token store.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	tokens TokenStore
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration, tokens TokenStore) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, tokens: tokens, now: time.Now}
}

// Issue returns a signed HS256 token for u.
func (i *Issuer) Issue(ctx context.Context, u *store.User) (string, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	jti := uuid.New().String()

	claims := session.Claims{
		Email: u.Email,
		Name:  u.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    TokenIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := i.tokens.Create(ctx, jti, u.ID, exp); err != nil {
		return "", fmt.Errorf("record token: %w", err)
	}
	return signed, nil
}

// Parser returns the parser that verifies tokens signed by this issuer.
func (i *Issuer) Parser() session.HMACParser {
	return session.HMACParser{Secret: i.secret, Issuer: TokenIssuer}
}

package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTProvider accepts HS256 tokens signed with a shared secret, as issued by
// hosted auth services configured with a symmetric signing key.
type JWTProvider struct {
	secret []byte
	issuer string
}

func NewJWTProvider(secret, issuer string) (*JWTProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt provider: secret is required")
	}
	return &JWTProvider{secret: []byte(secret), issuer: issuer}, nil
}

func (p *JWTProvider) Verify(_ context.Context, tokenStr string) (*Identity, error) {
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Identity{ExternalID: subject, Profile: profileFromClaims(claims)}, nil
}

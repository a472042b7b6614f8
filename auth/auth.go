package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("session token rejected")
)

// Profile holds the defaults an identity provider knows about a person.
// Every field is best-effort and may be empty.
type Profile struct {
	Name      string
	Username  string
	AvatarURL string
	Email     string
}

// Identity is a verified external session.
type Identity struct {
	ExternalID string
	Profile    Profile
}

// Provider verifies a bearer token issued by an external identity service.
type Provider interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrNoToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// profileFromClaims reads the standard OIDC profile claims.
func profileFromClaims(claims map[string]interface{}) Profile {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := claims[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	return Profile{
		Name:      str("name", "given_name"),
		Username:  str("preferred_username", "username", "nickname"),
		AvatarURL: str("picture", "avatar_url"),
		Email:     str("email"),
	}
}

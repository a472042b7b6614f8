package auth

import (
	"context"
	"fmt"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
)

type sessionValidator interface {
	ValidateSessionWithToken(ctx context.Context, sessionToken string) (bool, *descope.Token, error)
}

// DescopeProvider validates Descope session tokens.
type DescopeProvider struct {
	validator sessionValidator
}

func NewDescopeProvider(projectID string) (*DescopeProvider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("descope provider: project id is required")
	}
	descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("descope provider: %w", err)
	}
	return &DescopeProvider{validator: descopeClient.Auth}, nil
}

func (p *DescopeProvider) Verify(ctx context.Context, sessionToken string) (*Identity, error) {
	if sessionToken == "" {
		return nil, ErrNoToken
	}

	ok, token, err := p.validator.ValidateSessionWithToken(ctx, sessionToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !ok || token == nil || token.ID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{ExternalID: token.ID, Profile: profileFromClaims(token.Claims)}, nil
}

package api

import (
	"context"

	"github.com/Hassan1910/Community-Collaboration-Platforms/auth"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds a verified identity to the context
func ctxWithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity returns the verified identity, or nil for anonymous requests
func ctxGetIdentity(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}

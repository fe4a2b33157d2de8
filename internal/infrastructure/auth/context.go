// Package auth bridges the auth gateway and the application layer.
//
// The service itself never verifies credentials. An upstream gateway
// authenticates the request and forwards the user in a trusted header;
// this package carries that identity through the request context.
package auth

import (
	"context"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/identity"
)

type contextKey struct{}

// ContextWithIdentity returns a context carrying the given identity.
func ContextWithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext extracts the identity stored in the context.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(identity.Identity)
	return id, ok
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT PROVIDER
// ══════════════════════════════════════════════════════════════════════════════

// ContextProvider implements identity.Provider over the request context.
// The HTTP middleware stores the gateway identity there before the
// application layer runs.
type ContextProvider struct{}

// NewContextProvider creates a new ContextProvider.
func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

// CurrentIdentity returns the identity of the current request.
func (p *ContextProvider) CurrentIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.ExternalID == "" {
		return identity.Identity{}, identity.ErrUnauthenticated
	}
	return id, nil
}

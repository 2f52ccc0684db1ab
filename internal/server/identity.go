package server

import (
	"context"

	"github.com/tkrause/textgen-gateway/internal/auth"
)

const identityKey contextKey = "identity"

// WithIdentity attaches the authenticated identity to the context. Called by
// the auth middleware after successful validation, before any handler logic
// runs.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity retrieves the authenticated identity from context.
// Returns nil if the request was not authenticated.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

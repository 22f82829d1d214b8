package httpapi

import (
	"context"

	"github.com/and161185/esc-ranker/internal/token"
)

type ctxKey string

const (
	identityKey  ctxKey = "esc.identity"
	requestIDKey ctxKey = "esc.requestID"
)

// WithIdentity stores the authenticated identity in context.
func WithIdentity(ctx context.Context, id token.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated identity from context.
func IdentityFromCtx(ctx context.Context) (token.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return token.Identity{}, false
	}
	id, ok := v.(token.Identity)
	return id, ok
}

// WithRequestID stores the request id in context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx fetches the request id from context.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

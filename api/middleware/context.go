package middleware

import "context"

// identity is what the bearer token proved about the caller.
type identity struct {
	subject string
	session string
}

type ctxIdentityKey struct{}

func withIdentity(ctx context.Context, id identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey{}, id)
}

func identityFrom(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(ctxIdentityKey{}).(identity)
	return id
}

// IdentityIDFromContext is the identity-provider subject, empty when
// the request was not authenticated.
func IdentityIDFromContext(ctx context.Context) string {
	return identityFrom(ctx).subject
}

func SessionIDFromContext(ctx context.Context) string {
	return identityFrom(ctx).session
}

// WithIdentityID marks ctx as authenticated for subject; handlers under test
// use it to skip token verification.
func WithIdentityID(ctx context.Context, subject string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id := identityFrom(ctx)
	id.subject = subject
	return withIdentity(ctx, id)
}

package rest

import "context"

type usernameContextKey struct{}

// ContextWithUsername stores the authenticated username in the context.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey{}, username)
}

// UsernameFromContext returns the authenticated username, or "" when the
// request was not authenticated.
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameContextKey{}).(string)
	return username
}

package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID      ctxKey = "user_id"     // stable user identifier (token subject)
	CtxKeyAuthorities ctxKey = "authorities" // []string granted to the caller
)

// WithIdentity records who is calling for the rate limiter and the authz
// middleware.
func WithIdentity(ctx context.Context, userID string, authorities []string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	ctx = context.WithValue(ctx, CtxKeyAuthorities, authorities)
	return ctx
}

// UserIDFromCtx returns the caller's user id, or "" for anonymous requests.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

func authoritiesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyAuthorities).([]string); ok {
		return v
	}
	return nil
}

package authctx

import "context"

type ctxKey string

const keyUID ctxKey = "auth_uid"

// WithUID stores the authenticated user's uid on the request context.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, keyUID, uid)
}

// UID returns the authenticated uid, or "" for anonymous requests.
func UID(ctx context.Context) string {
	v, _ := ctx.Value(keyUID).(string)
	return v
}

package session

import "context"

type idCtxKey struct{}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, idCtxKey{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(idCtxKey{}).(string)
	return val, ok
}

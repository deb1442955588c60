package upstream

import "context"

// RequestIDHeader carries the console request id to the backends.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID tags ctx so every backend call made under it sends id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

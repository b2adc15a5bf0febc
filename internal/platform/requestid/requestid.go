package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// NewContext returns a context that carries the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// WithNew returns a context carrying a freshly generated ID, for work that
// does not start from an HTTP request.
func WithNew(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return NewContext(ctx, id), id
}

// FromContext returns the request ID stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

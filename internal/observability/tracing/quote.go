package tracing

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type quoteKey struct{}

// QuoteID returns the quote id stored on ctx, if any.
func QuoteID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(quoteKey{}).(string)
	return id
}

// ContextWithQuoteID stores id on ctx. An empty id leaves ctx unchanged.
func ContextWithQuoteID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, quoteKey{}, id)
}

// EnsureQuoteID returns ctx carrying a quote id, generating a ULID when
// none is present.
func EnsureQuoteID(ctx context.Context) (context.Context, string) {
	id := QuoteID(ctx)
	if id == "" {
		id = ulid.Make().String()
	}
	return ContextWithQuoteID(ctx, id), id
}

package tools

import (
	"context"

	"github.com/fathom0/fathom/internal/artifact"
)

// emitterKey uses an empty struct for a zero-allocation context key.
type emitterKey struct{}

// userKey carries the authenticated user id for tools that persist data.
type userKey struct{}

// Emitter receives artifact deltas produced by tools mid-generation.
// *stream.Writer satisfies it; tests supply a capture fake.
//
// Usage:
//  1. Handler creates the SSE writer for the request
//  2. Handler stores it in context via ContextWithEmitter()
//  3. Document tools retrieve it via EmitterFromContext()
//  4. Tools emit deltas while the model is still generating
type Emitter interface {
	WriteDelta(d artifact.Delta) error
}

// EmitterFromContext retrieves the Emitter from context.
// Returns nil if not set; tools degrade to non-streaming behavior.
func EmitterFromContext(ctx context.Context) Emitter {
	emitter, _ := ctx.Value(emitterKey{}).(Emitter)
	return emitter
}

// ContextWithEmitter stores the Emitter in context for the request.
func ContextWithEmitter(ctx context.Context, emitter Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emitter)
}

// UserIDFromContext retrieves the authenticated user id, or "" if unset.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

// ContextWithUserID stores the authenticated user id in context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

package logging

import (
	"context"

	"github.com/google/uuid"
)

type debugKey struct{}

// EnableDebugMode returns a context under which the C-prefixed debug methods always log, for
// example to trace a single control connection. The name tags the context; an empty name gets a
// random one.
func EnableDebugMode(ctx context.Context, name string) context.Context {
	if name == "" {
		name = uuid.NewString()[:8]
	}
	return context.WithValue(ctx, debugKey{}, name)
}

// IsDebugMode reports whether ctx came from EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return GetName(ctx) != ""
}

// GetName returns the name given to EnableDebugMode, or "".
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(debugKey{}).(string)
	return name
}

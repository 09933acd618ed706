package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeyMaterialID contextKey = "material_id"
	ContextKeyProfileID  contextKey = "profile_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithMaterialID adds a material ID to the context
func WithMaterialID(ctx context.Context, materialID string) context.Context {
	return context.WithValue(ctx, ContextKeyMaterialID, materialID)
}

// MaterialIDFromContext extracts the material ID from context
func MaterialIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyMaterialID).(string); ok {
		return id
	}
	return ""
}

// WithProfileID adds a profile ID to the context
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, ContextKeyProfileID, profileID)
}

// ProfileIDFromContext extracts the profile ID from context
func ProfileIDFromContext(ctx context.Context) string {
	if profileID, ok := ctx.Value(ContextKeyProfileID).(string); ok {
		return profileID
	}
	return ""
}

// WithTimeout creates a context with the specified timeout.
// A non-positive timeout returns the parent with a no-op cancel.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

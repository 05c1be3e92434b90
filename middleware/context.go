package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// TenantIDKey is the context key for the resolved tenant key
	TenantIDKey contextKey = "tenant_id"

	// TenantSlugKey is the context key for the raw tenant slug
	TenantSlugKey contextKey = "tenant_slug"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetTenantIDFromContext retrieves the resolved tenant key from context
func GetTenantIDFromContext(ctx context.Context) uuid.UUID {
	if val := ctx.Value(TenantIDKey); val != nil {
		if tenantID, ok := val.(uuid.UUID); ok {
			return tenantID
		}
	}
	return uuid.Nil
}

// WithTenantID adds a resolved tenant key to the context
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantSlugFromContext retrieves the tenant slug from context
func GetTenantSlugFromContext(ctx context.Context) string {
	if val := ctx.Value(TenantSlugKey); val != nil {
		if slug, ok := val.(string); ok {
			return slug
		}
	}
	return ""
}

// WithTenantSlug adds a tenant slug to the context
func WithTenantSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, TenantSlugKey, slug)
}

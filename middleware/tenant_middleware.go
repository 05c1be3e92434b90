package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/content-governance/services"
	"github.com/upb/content-governance/utils"
	"go.uber.org/zap"
)

// TenantSlugHeader identifies the tenant on every content request
const TenantSlugHeader = "X-Tenant-Slug"

// TenantResolver resolves a tenant slug to the internal tenant key
type TenantResolver interface {
	Resolve(ctx context.Context, slug string) (uuid.UUID, error)
}

// TenantMiddleware resolves the X-Tenant-Slug header once per request
// and stores the tenant key in the request context. Handlers downstream
// never see the slug, only the resolved key.
type TenantMiddleware struct {
	resolver TenantResolver
	logger   *zap.Logger
}

// NewTenantMiddleware creates a new tenant middleware
func NewTenantMiddleware(resolver TenantResolver, logger *zap.Logger) *TenantMiddleware {
	return &TenantMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// RequireTenant rejects requests without a resolvable tenant. A missing
// header is a client error; an unknown slug is not-found and no content
// operation is attempted.
func (m *TenantMiddleware) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := r.Header.Get(TenantSlugHeader)
		if slug == "" {
			_ = utils.WriteBadRequest(w, TenantSlugHeader+" header is required", nil)
			return
		}

		tenantID, err := m.resolver.Resolve(r.Context(), slug)
		if err != nil {
			switch {
			case services.IsNotFoundError(err):
				_ = utils.WriteNotFound(w, err.Error())
			case services.IsValidationError(err):
				_ = utils.WriteBadRequest(w, err.Error(), nil)
			default:
				m.logger.Error("tenant resolution failed",
					zap.String("slug", slug),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "")
			}
			return
		}

		ctx := WithTenantSlug(WithTenantID(r.Context(), tenantID), slug)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package tenant

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/upb/content-governance/repositories"
	"github.com/upb/content-governance/services"
	"go.uber.org/zap"
)

// Resolver maps tenant slugs to internal tenant keys. It is called on
// every request, so resolved slugs are held in a process-lifetime
// read-through cache: the slug-to-key mapping is effectively static, and
// entries are invalidated only by restart.
type Resolver struct {
	tenants repositories.TenantRepository
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]uuid.UUID
}

// NewResolver creates a new tenant resolver
func NewResolver(tenants repositories.TenantRepository, logger *zap.Logger) *Resolver {
	return &Resolver{
		tenants: tenants,
		logger:  logger,
		cache:   make(map[string]uuid.UUID),
	}
}

// Resolve returns the internal tenant key for a slug. Read-only, no side
// effects beyond the cache fill.
func (r *Resolver) Resolve(ctx context.Context, slug string) (uuid.UUID, error) {
	if slug == "" {
		return uuid.Nil, services.ErrEmptyTenantSlug
	}

	r.mu.RLock()
	id, ok := r.cache[slug]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	tenant, err := r.tenants.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return uuid.Nil, services.NewDomainError(services.ErrorTypeNotFound, "tenant not found", nil).
				WithDetail("slug", slug)
		}
		return uuid.Nil, services.WrapInternal("failed to resolve tenant", err)
	}

	r.mu.Lock()
	r.cache[slug] = tenant.ID
	r.mu.Unlock()

	r.logger.Debug("tenant resolved",
		zap.String("slug", slug),
		zap.String("tenant_id", tenant.ID.String()))
	return tenant.ID, nil
}

// CacheSize returns the number of cached slug entries
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

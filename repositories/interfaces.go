package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/content-governance/models"
)

// Storage-level sentinel errors. Repositories return these wrapped;
// the service layer translates them into the domain error taxonomy.
var (
	// ErrNotFound is returned when no row matches both the tenant and
	// the requested id. A row owned by another tenant is reported the
	// same way as a nonexistent one.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict is returned by the guarded state update when the
	// row exists but its state no longer matches the expected value.
	ErrStateConflict = errors.New("state changed concurrently")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying this transaction. Repository
	// calls made with it execute inside the transaction.
	Context() context.Context
}

// SortField is a sortable content item column. Only fields in this
// allow-list ever reach the SQL ORDER BY clause.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByTitle     SortField = "title"
)

// ContentSort is an allow-listed (field, direction) pair
type ContentSort struct {
	Field      SortField
	Descending bool
}

// ContentFilter narrows a content listing. Zero values mean "no filter".
type ContentFilter struct {
	State      *models.ContentState
	RiskTier   *models.RiskTier
	TitleQuery string // case-insensitive substring match on title
}

// Page bounds a listing. Limit <= 0 falls back to the repository default.
type Page struct {
	Limit  int
	Offset int
}

// TenantRepository handles tenant lookups. Tenants are provisioned
// out-of-band; the API reads them but never mutates them.
type TenantRepository interface {
	// Create inserts a tenant (provisioning and test fixtures only)
	Create(ctx context.Context, tenant *models.Tenant) error

	// GetByID retrieves a tenant by internal key
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)

	// GetBySlug retrieves a tenant by its unique slug
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// ContentRepository handles content item data operations. Every query is
// scoped by tenant in the WHERE clause, never as a post-filter.
type ContentRepository interface {
	// Create inserts a new content item
	Create(ctx context.Context, item *models.ContentItem) error

	// GetByID retrieves a content item owned by the tenant
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ContentItem, error)

	// List retrieves content items matching the filter, with the total
	// count of matches before pagination
	List(ctx context.Context, tenantID uuid.UUID, filter ContentFilter, sort ContentSort, page Page) ([]*models.ContentItem, int, error)

	// UpdateState performs the guarded state write:
	// UPDATE ... WHERE id AND tenant AND state = fromState.
	// Returns the updated item; ErrNotFound when the row does not exist
	// for the tenant, ErrStateConflict when it exists but its state has
	// moved since it was read.
	UpdateState(ctx context.Context, tenantID, id uuid.UUID, fromState, toState models.ContentState) (*models.ContentItem, error)
}

// EventRepository handles the append-only audit trail
type EventRepository interface {
	// Insert appends an event. Events are never updated or deleted.
	Insert(ctx context.Context, event *models.Event) error

	// ListForEntity retrieves events for an entity ascending by
	// created_at. limit <= 0 means unbounded.
	ListForEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, limit int) ([]*models.Event, error)

	// InsertProvenance appends a provenance record
	InsertProvenance(ctx context.Context, event *models.ProvenanceEvent) error

	// ListProvenanceForContent retrieves provenance records for a
	// content item ascending by created_at. limit <= 0 means unbounded.
	ListProvenanceForContent(ctx context.Context, tenantID, contentID uuid.UUID, limit int) ([]*models.ProvenanceEvent, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Tenants TenantRepository
	Content ContentRepository
	Events  EventRepository
}

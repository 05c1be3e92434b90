package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary: every content item and event belongs
// to exactly one tenant. Tenants are provisioned out-of-band; the API
// only ever looks them up by slug.
type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"` // URL-friendly identifier, unique and immutable
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new Tenant instance
func NewTenant(name, slug string) *Tenant {
	now := time.Now()
	return &Tenant{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

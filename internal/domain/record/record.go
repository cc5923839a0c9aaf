// Package record provides the tenant-scoped, soft-deletable base shared by
// every training record kind, plus form coercion and validation helpers.
package record

import (
	"time"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Base carries identity, tenant ownership, timestamps and soft-delete markers.
type Base struct {
	ID        string     `json:"id"`
	TenantID  tenant.ID  `json:"tenant_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Owned returns a Base stamped with tid. ID and timestamps are assigned by
// the store on insert.
func Owned(tid tenant.ID) Base {
	return Base{TenantID: tid}
}

// Live reports whether the record is visible to default queries.
func (b *Base) Live() bool { return !b.IsDeleted }

// Visibility selects which records a query may see.
type Visibility int

const (
	// Live excludes soft-deleted records. It is the default for every
	// listing, lookup and mutation.
	Live Visibility = iota
	// All includes soft-deleted records. Used for audit and export tooling.
	All
)

func (v Visibility) String() string {
	if v == All {
		return "all"
	}
	return "live"
}

// ParseVisibility maps "all" to All and everything else to Live.
func ParseVisibility(s string) Visibility {
	if s == "all" {
		return All
	}
	return Live
}

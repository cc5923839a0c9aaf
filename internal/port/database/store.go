// Package database defines the persistence port for training records.
package database

import (
	"context"

	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Records is the tenant-scoped store for one record kind. Every method
// filters on tid; unless a Visibility says otherwise, soft-deleted records
// are invisible and behave as not found.
type Records[T any] interface {
	// List returns one page of live records matching q. The sort key in q
	// is resolved against the kind's allow-list.
	List(ctx context.Context, tid tenant.ID, q listing.Query) (*listing.Page[T], error)
	// ListAll returns every record matching q's search, in q's order,
	// without pagination.
	ListAll(ctx context.Context, tid tenant.ID, q listing.Query, vis record.Visibility) ([]T, error)
	Get(ctx context.Context, tid tenant.ID, id string) (*T, error)
	// Create inserts rec and fills in its id and timestamps.
	Create(ctx context.Context, tid tenant.ID, rec *T) error
	// Update overwrites the editable fields of a live record and refreshes
	// its updated_at.
	Update(ctx context.Context, tid tenant.ID, rec *T) error
	SoftDelete(ctx context.Context, tid tenant.ID, id string) error
	// ToggleActive flips is_active. Kinds without the flag return
	// domain.ErrUnsupported.
	ToggleActive(ctx context.Context, tid tenant.ID, id string) error
	// Bulk applies action to the live records among ids in one statement
	// and returns the ids of the rows that changed.
	Bulk(ctx context.Context, tid tenant.ID, ids []string, action listing.Action) ([]string, error)
	Count(ctx context.Context, tid tenant.ID) (int64, error)
}

// Store groups the per-kind record stores.
type Store interface {
	Programs() Records[program.Program]
	Skills() Records[skill.Skill]
	Enrollments() Records[enrollment.Enrollment]
	Ping(ctx context.Context) error
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

const programColumns = `id, tenant_id, name, description, duration_hours, is_mandatory, is_active,
	created_at, updated_at, is_deleted, deleted_at`

type programRepo struct {
	*relation[program.Program]
}

func newProgramRepo(pool *pgxpool.Pool) *programRepo {
	return &programRepo{&relation[program.Program]{
		pool:    pool,
		desc:    &program.Listing,
		table:   "training_programs",
		source:  "training_programs",
		columns: programColumns,
		scan:    scanProgram,
	}}
}

func scanProgram(row scannable) (program.Program, error) {
	var p program.Program
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &p.DurationHours, &p.IsMandatory, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt, &p.IsDeleted, &p.DeletedAt,
	)
	return p, err
}

func (r *programRepo) Create(ctx context.Context, tid tenant.ID, p *program.Program) error {
	p.TenantID = tid
	err := r.pool.QueryRow(ctx,
		`INSERT INTO training_programs (tenant_id, name, description, duration_hours, is_mandatory, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		tid.String(), p.Name, p.Description, p.DurationHours, p.IsMandatory, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create training_programs: %w", err)
	}
	return nil
}

func (r *programRepo) Update(ctx context.Context, tid tenant.ID, p *program.Program) error {
	id, err := listing.CanonicalID(r.desc.Kind, p.ID)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`UPDATE training_programs
		 SET name = $3, description = $4, duration_hours = $5, is_mandatory = $6, is_active = $7, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2 AND is_deleted = FALSE
		 RETURNING updated_at`,
		tid.String(), id, p.Name, p.Description, p.DurationHours, p.IsMandatory, p.IsActive,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return notFoundWrap(err, "update training_programs %s", id)
	}
	return nil
}

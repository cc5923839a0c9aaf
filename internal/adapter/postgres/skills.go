package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

const skillColumns = `id, tenant_id, name, category, is_active, created_at, updated_at, is_deleted, deleted_at`

type skillRepo struct {
	*relation[skill.Skill]
}

func newSkillRepo(pool *pgxpool.Pool) *skillRepo {
	return &skillRepo{&relation[skill.Skill]{
		pool:    pool,
		desc:    &skill.Listing,
		table:   "skills",
		source:  "skills",
		columns: skillColumns,
		scan:    scanSkill,
	}}
}

func scanSkill(row scannable) (skill.Skill, error) {
	var s skill.Skill
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Name, &s.Category, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt, &s.IsDeleted, &s.DeletedAt,
	)
	return s, err
}

func (r *skillRepo) Create(ctx context.Context, tid tenant.ID, s *skill.Skill) error {
	s.TenantID = tid
	err := r.pool.QueryRow(ctx,
		`INSERT INTO skills (tenant_id, name, category, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		tid.String(), s.Name, s.Category, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create skills: %w", err)
	}
	return nil
}

func (r *skillRepo) Update(ctx context.Context, tid tenant.ID, s *skill.Skill) error {
	id, err := listing.CanonicalID(r.desc.Kind, s.ID)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`UPDATE skills SET name = $3, category = $4, is_active = $5, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2 AND is_deleted = FALSE
		 RETURNING updated_at`,
		tid.String(), id, s.Name, s.Category, s.IsActive,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return notFoundWrap(err, "update skills %s", id)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

const enrollmentColumns = `id, tenant_id, employee_id, employee_name, program_id, program_name, status,
	start_date, completion_date, score, created_at, updated_at, is_deleted, deleted_at`

type enrollmentRepo struct {
	*relation[enrollment.Enrollment]
}

func newEnrollmentRepo(pool *pgxpool.Pool) *enrollmentRepo {
	return &enrollmentRepo{&relation[enrollment.Enrollment]{
		pool:    pool,
		desc:    &enrollment.Listing,
		table:   "employee_trainings",
		source:  "employee_training_rows",
		columns: enrollmentColumns,
		scan:    scanEnrollment,
	}}
}

func scanEnrollment(row scannable) (enrollment.Enrollment, error) {
	var (
		e     enrollment.Enrollment
		score pgtype.Numeric
	)
	err := row.Scan(
		&e.ID, &e.TenantID, &e.EmployeeID, &e.EmployeeName, &e.ProgramID, &e.ProgramName, &e.Status,
		&e.StartDate, &e.CompletionDate, &score, &e.CreatedAt, &e.UpdatedAt, &e.IsDeleted, &e.DeletedAt,
	)
	if err != nil {
		return e, err
	}
	e.Score, err = scanScore(score)
	return e, err
}

// Create inserts the enrollment only if its program is a live program of the
// same tenant.
func (r *enrollmentRepo) Create(ctx context.Context, tid tenant.ID, e *enrollment.Enrollment) error {
	e.TenantID = tid
	err := r.pool.QueryRow(ctx,
		`INSERT INTO employee_trainings
		   (tenant_id, employee_id, employee_name, program_id, status, start_date, completion_date, score)
		 SELECT $1::uuid, $2::uuid, $3::text, p.id, $5::text, $6::date, $7::date, $8::numeric
		 FROM training_programs p
		 WHERE p.id = $4::uuid AND p.tenant_id = $1::uuid AND p.is_deleted = FALSE
		 RETURNING id, created_at, updated_at,
		   (SELECT name FROM training_programs WHERE id = program_id)`,
		tid.String(), e.EmployeeID, e.EmployeeName, e.ProgramID, e.Status,
		e.StartDate, e.CompletionDate, scoreArg(e.Score),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt, &e.ProgramName)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("create employee_trainings: %w: program %s not found", domain.ErrValidation, e.ProgramID)
	}
	if err != nil {
		return fmt.Errorf("create employee_trainings: %w", err)
	}
	return nil
}

// Update overwrites a live enrollment. A program that is not live in the
// tenant leaves the row untouched and reports not found.
func (r *enrollmentRepo) Update(ctx context.Context, tid tenant.ID, e *enrollment.Enrollment) error {
	id, err := listing.CanonicalID(r.desc.Kind, e.ID)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx,
		`UPDATE employee_trainings t
		 SET employee_id = $3, employee_name = $4, program_id = p.id, status = $6,
		     start_date = $7, completion_date = $8, score = $9, updated_at = now()
		 FROM training_programs p
		 WHERE t.tenant_id = $1 AND t.id = $2 AND t.is_deleted = FALSE
		   AND p.id = $5 AND p.tenant_id = $1 AND p.is_deleted = FALSE
		 RETURNING t.updated_at, p.name`,
		tid.String(), id, e.EmployeeID, e.EmployeeName, e.ProgramID, e.Status,
		e.StartDate, e.CompletionDate, scoreArg(e.Score),
	).Scan(&e.UpdatedAt, &e.ProgramName)
	if err != nil {
		return notFoundWrap(err, "update employee_trainings %s", id)
	}
	return nil
}

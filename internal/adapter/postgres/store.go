package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/port/database"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool        *pgxpool.Pool
	programs    *programRepo
	skills      *skillRepo
	enrollments *enrollmentRepo
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:        pool,
		programs:    newProgramRepo(pool),
		skills:      newSkillRepo(pool),
		enrollments: newEnrollmentRepo(pool),
	}
}

func (s *Store) Programs() database.Records[program.Program]          { return s.programs }
func (s *Store) Skills() database.Records[skill.Skill]                { return s.skills }
func (s *Store) Enrollments() database.Records[enrollment.Enrollment] { return s.enrollments }

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

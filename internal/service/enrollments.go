package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/port/database"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
)

// EnrollmentService manages employee enrollments in programs.
type EnrollmentService struct {
	*Listing[enrollment.Enrollment]
	programs database.Records[program.Program]
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(store database.Store, notify *Notifier, metrics *otel.Metrics) *EnrollmentService {
	return &EnrollmentService{
		Listing:  newListing(&enrollment.Listing, store.Enrollments(), notify, metrics),
		programs: store.Programs(),
	}
}

// Programs returns the live programs of tid by name, for the program
// choice on enrollment forms.
func (s *EnrollmentService) Programs(ctx context.Context, tid tenant.ID) ([]program.Program, error) {
	return s.programs.ListAll(ctx, tid, listing.Query{Sort: "name"}, record.Live)
}

// program resolves the referenced program. A program that is missing,
// deleted or owned by another tenant is a validation failure of the form.
func (s *EnrollmentService) program(ctx context.Context, tid tenant.ID, id string) (*program.Program, error) {
	p, err := s.programs.Get(ctx, tid, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: program_id does not reference a program", domain.ErrValidation)
	}
	return p, err
}

// Create enrolls an employee in a program of the same tenant.
func (s *EnrollmentService) Create(ctx context.Context, tid tenant.ID, in enrollment.Input) (*Saved[enrollment.Enrollment], error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.program(ctx, tid, in.ProgramID)
	if err != nil {
		return nil, err
	}
	e := enrollment.New(tid, in)
	e.ProgramName = p.Name
	if err := s.records.Create(ctx, tid, e); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return s.saved(ctx, tid, e, messagequeue.OpCreated, e.ID)
}

// Update replaces every editable field of a live enrollment, including
// its program.
func (s *EnrollmentService) Update(ctx context.Context, tid tenant.ID, id string, in enrollment.Input) (*Saved[enrollment.Enrollment], error) {
	e, err := s.records.Get(ctx, tid, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.program(ctx, tid, in.ProgramID)
	if err != nil {
		return nil, err
	}
	e.Apply(in)
	e.ProgramName = p.Name
	if err := s.records.Update(ctx, tid, e); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}
	return s.saved(ctx, tid, e, messagequeue.OpUpdated, e.ID)
}

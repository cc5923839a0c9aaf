package service

import (
	"context"
	"fmt"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/port/database"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
)

// ProgramService manages training programs.
type ProgramService struct {
	*Listing[program.Program]
}

// NewProgramService creates a new ProgramService.
func NewProgramService(store database.Store, notify *Notifier, metrics *otel.Metrics) *ProgramService {
	return &ProgramService{newListing(&program.Listing, store.Programs(), notify, metrics)}
}

// Create validates in and stores a new program for tid.
func (s *ProgramService) Create(ctx context.Context, tid tenant.ID, in program.Input) (*Saved[program.Program], error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := program.New(tid, in)
	if err := s.records.Create(ctx, tid, p); err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}
	return s.saved(ctx, tid, p, messagequeue.OpCreated, p.ID)
}

// Update replaces every editable field of a live program.
func (s *ProgramService) Update(ctx context.Context, tid tenant.ID, id string, in program.Input) (*Saved[program.Program], error) {
	p, err := s.records.Get(ctx, tid, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p.Apply(in)
	if err := s.records.Update(ctx, tid, p); err != nil {
		return nil, fmt.Errorf("update program: %w", err)
	}
	return s.saved(ctx, tid, p, messagequeue.OpUpdated, p.ID)
}

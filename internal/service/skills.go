package service

import (
	"context"
	"fmt"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/port/database"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
)

// SkillService manages the skills catalog.
type SkillService struct {
	*Listing[skill.Skill]
}

// NewSkillService creates a new SkillService.
func NewSkillService(store database.Store, notify *Notifier, metrics *otel.Metrics) *SkillService {
	return &SkillService{newListing(&skill.Listing, store.Skills(), notify, metrics)}
}

// Create creates a new skill.
func (s *SkillService) Create(ctx context.Context, tid tenant.ID, in skill.Input) (*Saved[skill.Skill], error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sk := skill.New(tid, in)
	if err := s.records.Create(ctx, tid, sk); err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return s.saved(ctx, tid, sk, messagequeue.OpCreated, sk.ID)
}

// Update updates a skill.
func (s *SkillService) Update(ctx context.Context, tid tenant.ID, id string, in skill.Input) (*Saved[skill.Skill], error) {
	sk, err := s.records.Get(ctx, tid, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sk.Apply(in)
	if err := s.records.Update(ctx, tid, sk); err != nil {
		return nil, fmt.Errorf("update skill: %w", err)
	}
	return s.saved(ctx, tid, sk, messagequeue.OpUpdated, sk.ID)
}

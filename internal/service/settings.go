package service

import (
	"github.com/ERPlora/module-training/internal/domain/settings"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// SettingsService serves the module settings page.
type SettingsService struct{}

// NewSettingsService creates a new SettingsService.
func NewSettingsService() *SettingsService {
	return &SettingsService{}
}

// Get returns the settings of tid. The module has no per-tenant settings
// yet, so every tenant gets the placeholder.
func (s *SettingsService) Get(_ tenant.ID) settings.Settings {
	return settings.Placeholder()
}

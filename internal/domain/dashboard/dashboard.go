// Package dashboard defines the per-tenant summary shown on the module's
// landing page.
package dashboard

import "github.com/ERPlora/module-training/internal/domain/tenant"

// Summary holds live record counts for one tenant.
type Summary struct {
	TenantID    tenant.ID `json:"tenant_id"`
	Programs    int64     `json:"total_training_programs"`
	Skills      int64     `json:"total_skills"`
	Enrollments int64     `json:"total_employee_trainings"`
}

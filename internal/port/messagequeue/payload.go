package messagequeue

import (
	"time"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpToggled = "toggled"
	OpBulk    = "bulk"
)

// ChangePayload is the schema for training.<kind>.<op> messages. Origin
// identifies the publishing instance so it can ignore its own events.
type ChangePayload struct {
	TenantID tenant.ID `json:"tenant_id"`
	Kind     string    `json:"kind"`
	Op       string    `json:"op"`
	IDs      []string  `json:"ids,omitempty"`
	Action   string    `json:"action,omitempty"`
	Affected int64     `json:"affected"`
	Origin   string    `json:"origin,omitempty"`
	At       time.Time `json:"at"`
}

// Subject returns the subject the change is published on.
func (p ChangePayload) Subject() string {
	return SubjectPrefix + "." + p.Kind + "." + p.Op
}

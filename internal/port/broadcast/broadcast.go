// Package broadcast defines the port for pushing real-time events to
// connected clients.
package broadcast

import (
	"context"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Broadcaster sends typed events to the clients of a single tenant.
type Broadcaster interface {
	BroadcastToTenant(ctx context.Context, tid tenant.ID, eventType string, payload any)
}

// EventListingChanged tells clients that a listing of the tenant changed and
// should be re-fetched. The payload is a messagequeue.ChangePayload.
const EventListingChanged = "listing.changed"

// Package service holds the training use cases: listings, lifecycle
// mutations, bulk actions, exports and the dashboard.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/port/broadcast"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
	"github.com/ERPlora/module-training/internal/resilience"
)

// Publishing stops for publishCooldown after publishMaxFailures consecutive
// failures, so a NATS outage does not add a timeout to every mutation.
const (
	publishMaxFailures = 5
	publishCooldown    = 30 * time.Second
)

// Notifier fans a record change out to websocket clients, the message
// queue and local listeners such as the dashboard cache. Every sink is
// optional.
type Notifier struct {
	origin    string
	hub       broadcast.Broadcaster
	queue     messagequeue.Queue
	breaker   *resilience.Breaker
	metrics   *otel.Metrics
	listeners []func(ctx context.Context, tid tenant.ID)
	now       func() time.Time
}

// NewNotifier creates a Notifier. hub, queue and metrics may be nil.
func NewNotifier(hub broadcast.Broadcaster, queue messagequeue.Queue, metrics *otel.Metrics) *Notifier {
	return &Notifier{
		origin:  uuid.NewString(),
		hub:     hub,
		queue:   queue,
		breaker: resilience.NewBreaker("nats-publish", publishMaxFailures, publishCooldown),
		metrics: metrics,
		now:     time.Now,
	}
}

// OnChange registers fn to run synchronously for every change.
// Register listeners before serving requests.
func (n *Notifier) OnChange(fn func(ctx context.Context, tid tenant.ID)) {
	n.listeners = append(n.listeners, fn)
}

// Changed publishes p. Delivery failures are logged, never returned: the
// mutation has already been committed.
func (n *Notifier) Changed(ctx context.Context, p messagequeue.ChangePayload) {
	if n == nil {
		return
	}
	p.At = n.now().UTC()
	p.Origin = n.origin
	n.metrics.Mutation(ctx, p.Kind, p.Op)

	n.deliver(ctx, p)
	if n.queue == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.ErrorContext(ctx, "marshal change payload", "kind", p.Kind, "error", err)
		return
	}
	err = n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.queue.Publish(ctx, p.Subject(), data)
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		slog.DebugContext(ctx, "change not published, queue unavailable", "subject", p.Subject())
	case err != nil:
		slog.ErrorContext(ctx, "failed to publish change", "subject", p.Subject(), "error", err)
	}
}

// deliver runs the listeners and pushes p to the tenant's websocket clients.
func (n *Notifier) deliver(ctx context.Context, p messagequeue.ChangePayload) {
	for _, fn := range n.listeners {
		fn(ctx, p.TenantID)
	}
	if n.hub != nil {
		n.hub.BroadcastToTenant(ctx, p.TenantID, broadcast.EventListingChanged, p)
	}
}

// Subscribe delivers changes published by other instances to this
// instance's listeners and websocket clients. The returned function stops
// the subscription.
func (n *Notifier) Subscribe(ctx context.Context) (func(), error) {
	if n.queue == nil {
		return func() {}, nil
	}
	return n.queue.Subscribe(ctx, messagequeue.SubjectChanges, func(ctx context.Context, _ string, data []byte) error {
		var p messagequeue.ChangePayload
		if err := json.Unmarshal(data, &p); err != nil {
			// Redelivery cannot fix a malformed message; drop it.
			slog.WarnContext(ctx, "dropping malformed change event", "error", err)
			return nil
		}
		if p.TenantID.IsZero() || p.Origin == n.origin {
			return nil
		}
		n.deliver(ctx, p)
		return nil
	})
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain/dashboard"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/port/cache"
	"github.com/ERPlora/module-training/internal/port/database"
)

// countTimeout bounds a shared count, which outlives the request that
// started it.
const countTimeout = 10 * time.Second

// DashboardService computes per-tenant record counts, cached for a short
// TTL and invalidated on every change of the tenant.
type DashboardService struct {
	store   database.Store
	cache   cache.Cache
	ttl     time.Duration
	metrics *otel.Metrics
	group   singleflight.Group

	// gens is bumped by Invalidate; a count started under an older
	// generation is returned but never cached.
	mu   sync.Mutex
	gens map[tenant.ID]uint64
}

// NewDashboardService creates a DashboardService. A nil cache disables
// caching.
func NewDashboardService(store database.Store, c cache.Cache, ttl time.Duration, metrics *otel.Metrics) *DashboardService {
	return &DashboardService{store: store, cache: c, ttl: ttl, metrics: metrics, gens: make(map[tenant.ID]uint64)}
}

func (s *DashboardService) generation(tid tenant.ID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[tid]
}

func summaryKey(tid tenant.ID) string {
	return cache.Key(tid, "dashboard")
}

// Summary returns the live counts of tid.
func (s *DashboardService) Summary(ctx context.Context, tid tenant.ID) (*dashboard.Summary, error) {
	key := summaryKey(tid)
	if sum, ok := s.cached(ctx, key); ok {
		s.metrics.Cache(ctx, true)
		return sum, nil
	}
	s.metrics.Cache(ctx, false)

	ch := s.group.DoChan(key, func() (any, error) {
		gen := s.generation(tid)
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), countTimeout)
		defer cancel()
		sum, err := s.count(cctx, tid)
		if err != nil {
			return nil, err
		}
		if s.generation(tid) == gen {
			s.remember(cctx, key, sum)
		}
		return sum, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		sum := *res.Val.(*dashboard.Summary)
		return &sum, nil
	}
}

// count reads the three counts concurrently.
func (s *DashboardService) count(ctx context.Context, tid tenant.ID) (*dashboard.Summary, error) {
	sum := &dashboard.Summary{TenantID: tid}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Programs, err = s.store.Programs().Count(gctx, tid)
		return err
	})
	g.Go(func() (err error) {
		sum.Skills, err = s.store.Skills().Count(gctx, tid)
		return err
	})
	g.Go(func() (err error) {
		sum.Enrollments, err = s.store.Enrollments().Count(gctx, tid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return sum, nil
}

func (s *DashboardService) cached(ctx context.Context, key string) (*dashboard.Summary, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var sum dashboard.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, false
	}
	return &sum, true
}

func (s *DashboardService) remember(ctx context.Context, key string, sum *dashboard.Summary) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.WarnContext(ctx, "dashboard cache set failed", "error", err)
	}
}

// Invalidate drops the cached summary of tid. Counts already running are
// not cached when they finish.
func (s *DashboardService) Invalidate(ctx context.Context, tid tenant.ID) {
	s.mu.Lock()
	s.gens[tid]++
	s.mu.Unlock()

	key := summaryKey(tid)
	s.group.Forget(key)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "dashboard cache delete failed", "tenant_id", tid, "error", err)
	}
}

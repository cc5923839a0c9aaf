package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/port/database"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// memRecords is an in-memory database.Records. Search matches the
// descriptor's search fields through the search accessor; rows are kept in
// insertion order.
type memRecords[T any] struct {
	mu     sync.Mutex
	desc   *listing.Descriptor[T]
	rows   []T
	base   func(*T) *record.Base
	active func(*T) *bool
	text   func(*T) string

	// countErr injects a Count failure; bulkArgs and counts record calls.
	countErr error
	bulkArgs [][]string
	counts   int

	// afterCount runs once the count has been read, before it is returned.
	afterCount func()
}

func (m *memRecords[T]) visible(tid tenant.ID, r *T, vis record.Visibility, search string) bool {
	b := m.base(r)
	if b.TenantID != tid || !(vis == record.All || b.Live()) {
		return false
	}
	return search == "" || strings.Contains(strings.ToLower(m.text(r)), strings.ToLower(search))
}

func (m *memRecords[T]) ListAll(_ context.Context, tid tenant.ID, q listing.Query, vis record.Visibility) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = q.Normalize()
	out := []T{}
	for i := range m.rows {
		if m.visible(tid, &m.rows[i], vis, q.Search) {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memRecords[T]) List(ctx context.Context, tid tenant.ID, q listing.Query) (*listing.Page[T], error) {
	q, _ = m.desc.Resolve(q)
	all, _ := m.ListAll(ctx, tid, q, record.Live)
	w := listing.Paginate(int64(len(all)), q.Page, q.PageSize)
	end := min(w.Offset+w.Limit, len(all))
	return listing.NewPage(all[w.Offset:end], int64(len(all)), w, q), nil
}

func (m *memRecords[T]) find(tid tenant.ID, id string) *T {
	for i := range m.rows {
		b := m.base(&m.rows[i])
		if b.ID == id && b.TenantID == tid && b.Live() {
			return &m.rows[i]
		}
	}
	return nil
}

func (m *memRecords[T]) Get(_ context.Context, tid tenant.ID, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(tid, id)
	if r == nil {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords[T]) Create(_ context.Context, tid tenant.ID, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.base(rec)
	b.ID = uuid.NewString()
	b.TenantID = tid
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.rows = append(m.rows, *rec)
	return nil
}

func (m *memRecords[T]) Update(_ context.Context, tid tenant.ID, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(tid, m.base(rec).ID)
	if r == nil {
		return domain.ErrNotFound
	}
	m.base(rec).UpdatedAt = time.Now()
	*r = *rec
	return nil
}

func (m *memRecords[T]) SoftDelete(_ context.Context, tid tenant.ID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(tid, id)
	if r == nil {
		return domain.ErrNotFound
	}
	softDelete(m.base(r))
	return nil
}

func (m *memRecords[T]) ToggleActive(_ context.Context, tid tenant.ID, id string) error {
	if m.active == nil {
		return domain.ErrUnsupported
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(tid, id)
	if r == nil {
		return domain.ErrNotFound
	}
	a := m.active(r)
	*a = !*a
	return nil
}

func (m *memRecords[T]) Bulk(_ context.Context, tid tenant.ID, ids []string, action listing.Action) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkArgs = append(m.bulkArgs, ids)
	var changed []string
	for i := range m.rows {
		r := &m.rows[i]
		b := m.base(r)
		if b.TenantID != tid || !b.Live() || !slices.Contains(ids, b.ID) {
			continue
		}
		switch action {
		case listing.Activate:
			*m.active(r) = true
		case listing.Deactivate:
			*m.active(r) = false
		case listing.Delete:
			softDelete(b)
		}
		changed = append(changed, b.ID)
	}
	return changed, nil
}

func (m *memRecords[T]) Count(ctx context.Context, tid tenant.ID) (int64, error) {
	m.mu.Lock()
	m.counts++
	err, hook := m.countErr, m.afterCount
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	all, _ := m.ListAll(ctx, tid, listing.Query{}, record.Live)
	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

// mockStore is a minimal in-memory implementation of database.Store for testing.
type mockStore struct {
	programs    *memRecords[program.Program]
	skills      *memRecords[skill.Skill]
	enrollments *memRecords[enrollment.Enrollment]
}

func newMockStore() *mockStore {
	return &mockStore{
		programs: &memRecords[program.Program]{
			desc:   &program.Listing,
			base:   func(p *program.Program) *record.Base { return &p.Base },
			active: func(p *program.Program) *bool { return &p.IsActive },
			text:   func(p *program.Program) string { return p.Name + " " + p.Description },
		},
		skills: &memRecords[skill.Skill]{
			desc:   &skill.Listing,
			base:   func(s *skill.Skill) *record.Base { return &s.Base },
			active: func(s *skill.Skill) *bool { return &s.IsActive },
			text:   func(s *skill.Skill) string { return s.Name + " " + s.Category },
		},
		enrollments: &memRecords[enrollment.Enrollment]{
			desc: &enrollment.Listing,
			base: func(e *enrollment.Enrollment) *record.Base { return &e.Base },
			text: func(e *enrollment.Enrollment) string { return e.EmployeeName + " " + e.Status },
		},
	}
}

func (m *mockStore) Programs() database.Records[program.Program]          { return m.programs }
func (m *mockStore) Skills() database.Records[skill.Skill]                { return m.skills }
func (m *mockStore) Enrollments() database.Records[enrollment.Enrollment] { return m.enrollments }
func (m *mockStore) Ping(context.Context) error                           { return nil }

type hubEvent struct {
	tenant    tenant.ID
	eventType string
	payload   any
}

type fakeHub struct {
	mu     sync.Mutex
	events []hubEvent
}

func (h *fakeHub) BroadcastToTenant(_ context.Context, tid tenant.ID, eventType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, hubEvent{tid, eventType, payload})
}

type fakeQueue struct {
	mu        sync.Mutex
	published map[string][][]byte
	handler   messagequeue.Handler

	// publishErr fails every publish; attempts counts calls.
	publishErr error
	attempts   int
}

func (q *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.attempts++
	if q.publishErr != nil {
		return q.publishErr
	}
	if q.published == nil {
		q.published = make(map[string][][]byte)
	}
	q.published[subject] = append(q.published[subject], data)
	return nil
}

func (q *fakeQueue) Subscribe(_ context.Context, _ string, h messagequeue.Handler) (func(), error) {
	q.handler = h
	return func() { q.handler = nil }, nil
}

func (q *fakeQueue) Close() error      { return nil }
func (q *fakeQueue) IsConnected() bool { return true }

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// softDelete mirrors the store: deleted_at is only stamped on the
// live-to-deleted transition.
func softDelete(b *record.Base) {
	if b.IsDeleted {
		return
	}
	now := time.Now()
	b.IsDeleted = true
	b.DeletedAt = &now
	b.UpdatedAt = now
}

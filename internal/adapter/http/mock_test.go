package http_test

import (
	"context"
	"errors"
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
)

var _ database.Store = (*mockStore)(nil)

var errStoreDown = errors.New("connection refused")

// memRecords is an in-memory database.Records keeping insertion order.
type memRecords[T any] struct {
	mu     sync.Mutex
	desc   *listing.Descriptor[T]
	rows   []T
	base   func(*T) *record.Base
	active func(*T) *bool
	text   func(*T) string
	err    error
}

func (m *memRecords[T]) ListAll(_ context.Context, tid tenant.ID, q listing.Query, vis record.Visibility) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := []T{}
	for i := range m.rows {
		b := m.base(&m.rows[i])
		if b.TenantID != tid || !(vis == record.All || b.Live()) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.text(&m.rows[i])), search) {
			continue
		}
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memRecords[T]) List(ctx context.Context, tid tenant.ID, q listing.Query) (*listing.Page[T], error) {
	q, _ = m.desc.Resolve(q)
	all, err := m.ListAll(ctx, tid, q, record.Live)
	if err != nil {
		return nil, err
	}
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
	all, err := m.ListAll(ctx, tid, listing.Query{}, record.Live)
	return int64(len(all)), err
}

type mockStore struct {
	programs    *memRecords[program.Program]
	skills      *memRecords[skill.Skill]
	enrollments *memRecords[enrollment.Enrollment]
	pingErr     error
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
func (m *mockStore) Ping(context.Context) error                           { return m.pingErr }

type fakeQueue struct{ connected bool }

func (q fakeQueue) IsConnected() bool { return q.connected }

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

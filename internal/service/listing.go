package service

import (
	"context"
	"fmt"
	"io"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/export"
	"github.com/ERPlora/module-training/internal/port/database"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
)

// Saved is the result of a create or edit: the stored record plus the
// refreshed first page of its listing.
type Saved[T any] struct {
	Record  *T               `json:"record"`
	Listing *listing.Page[T] `json:"listing"`
}

// BulkResult reports what a bulk action did. Requested counts the valid,
// distinct ids submitted; Affected counts the live rows that changed.
type BulkResult[T any] struct {
	Action    listing.Action   `json:"action"`
	Requested int              `json:"requested"`
	Affected  int64            `json:"affected"`
	Listing   *listing.Page[T] `json:"listing"`
}

// Listing implements the kind-independent operations over one record kind:
// list, export, lookup, soft-delete, toggle and bulk actions.
type Listing[T any] struct {
	desc    *listing.Descriptor[T]
	records database.Records[T]
	notify  *Notifier
	metrics *otel.Metrics
}

// newListing panics if desc is inconsistent: descriptors are package-level
// values, so this fails at startup rather than on a request.
func newListing[T any](desc *listing.Descriptor[T], records database.Records[T], notify *Notifier, metrics *otel.Metrics) *Listing[T] {
	if err := desc.Check(); err != nil {
		panic(err)
	}
	return &Listing[T]{desc: desc, records: records, notify: notify, metrics: metrics}
}

// Descriptor returns the kind's listing descriptor.
func (s *Listing[T]) Descriptor() *listing.Descriptor[T] { return s.desc }

// List returns one page of live records.
func (s *Listing[T]) List(ctx context.Context, tid tenant.ID, q listing.Query) (*listing.Page[T], error) {
	return s.records.List(ctx, tid, q)
}

// Refresh returns the first page with default sort and page size, which is
// what every mutation responds with.
func (s *Listing[T]) Refresh(ctx context.Context, tid tenant.ID) (*listing.Page[T], error) {
	return s.records.List(ctx, tid, listing.FirstPage())
}

// Get returns a live record or domain.ErrNotFound.
func (s *Listing[T]) Get(ctx context.Context, tid tenant.ID, id string) (*T, error) {
	return s.records.Get(ctx, tid, id)
}

// Table returns the export table for every record matching q's search, in
// q's order, ignoring pagination.
func (s *Listing[T]) Table(ctx context.Context, tid tenant.ID, q listing.Query, vis record.Visibility) (export.Table, error) {
	items, err := s.records.ListAll(ctx, tid, q, vis)
	if err != nil {
		return export.Table{}, fmt.Errorf("export %s: %w", s.desc.Kind, err)
	}
	return export.Build(s.desc, items), nil
}

// Export writes the live records matching q to w in format f.
func (s *Listing[T]) Export(ctx context.Context, tid tenant.ID, q listing.Query, f export.Format, w io.Writer) (err error) {
	ctx, span := otel.StartExportSpan(ctx, s.desc.Kind, string(f))
	defer func() { otel.End(span, err) }()

	t, err := s.Table(ctx, tid, q, record.Live)
	if err != nil {
		return err
	}
	if err := export.Write(w, f, t); err != nil {
		return fmt.Errorf("export %s: %w", s.desc.Kind, err)
	}
	s.metrics.Export(ctx, s.desc.Kind, string(f), len(t.Rows))
	return nil
}

// Delete soft-deletes a live record.
func (s *Listing[T]) Delete(ctx context.Context, tid tenant.ID, id string) (*listing.Page[T], error) {
	id, err := listing.CanonicalID(s.desc.Kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.records.SoftDelete(ctx, tid, id); err != nil {
		return nil, err
	}
	s.changed(ctx, tid, messagequeue.OpDeleted, []string{id})
	return s.Refresh(ctx, tid)
}

// Toggle flips is_active on a live record.
func (s *Listing[T]) Toggle(ctx context.Context, tid tenant.ID, id string) (*listing.Page[T], error) {
	if !s.desc.Toggle {
		return nil, fmt.Errorf("toggle %s: %w", s.desc.Kind, domain.ErrUnsupported)
	}
	id, err := listing.CanonicalID(s.desc.Kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.records.ToggleActive(ctx, tid, id); err != nil {
		return nil, err
	}
	s.changed(ctx, tid, messagequeue.OpToggled, []string{id})
	return s.Refresh(ctx, tid)
}

// Bulk applies action to the ids in rawIDs. Malformed ids are dropped. An
// action the kind does not support changes nothing and is not an error.
func (s *Listing[T]) Bulk(ctx context.Context, tid tenant.ID, rawIDs, action string) (*BulkResult[T], error) {
	ids := listing.ParseIDs(rawIDs)
	res := &BulkResult[T]{Action: listing.Action(action), Requested: len(ids)}

	if s.desc.Supports(res.Action) && len(ids) > 0 {
		changed, err := s.records.Bulk(ctx, tid, ids, res.Action)
		if err != nil {
			return nil, err
		}
		res.Affected = int64(len(changed))
		s.metrics.Bulk(ctx, s.desc.Kind, action, res.Affected)
		if len(changed) > 0 {
			s.notify.Changed(ctx, messagequeue.ChangePayload{
				TenantID: tid, Kind: s.desc.Kind, Op: messagequeue.OpBulk,
				IDs: changed, Action: action, Affected: res.Affected,
			})
		}
	}

	page, err := s.Refresh(ctx, tid)
	if err != nil {
		return nil, err
	}
	res.Listing = page
	return res, nil
}

func (s *Listing[T]) changed(ctx context.Context, tid tenant.ID, op string, ids []string) {
	s.notify.Changed(ctx, messagequeue.ChangePayload{
		TenantID: tid, Kind: s.desc.Kind, Op: op, IDs: ids, Affected: int64(len(ids)),
	})
}

// saved assembles a Saved after a create or edit.
func (s *Listing[T]) saved(ctx context.Context, tid tenant.ID, rec *T, op string, id string) (*Saved[T], error) {
	s.changed(ctx, tid, op, []string{id})
	page, err := s.Refresh(ctx, tid)
	if err != nil {
		return nil, err
	}
	return &Saved[T]{Record: rec, Listing: page}, nil
}

package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// relation is the generic list engine and lifecycle executor for one record
// kind. Reads go through source, writes through table; the two differ only
// when a kind needs joined columns.
type relation[T any] struct {
	pool    *pgxpool.Pool
	desc    *listing.Descriptor[T]
	table   string
	source  string
	columns string
	scan    func(scannable) (T, error)
}

// filter builds the WHERE clause for tenant, visibility and search. The
// tenant predicate is always $1.
func (r *relation[T]) filter(tid tenant.ID, q listing.Query, vis record.Visibility) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{tid.String()}
	if vis == record.Live {
		conds = append(conds, "is_deleted = FALSE")
	}
	if q.Search != "" && len(r.desc.Search) > 0 {
		args = append(args, listing.LikePattern(q.Search))
		n := strconv.Itoa(len(args))
		ors := make([]string, len(r.desc.Search))
		for i, f := range r.desc.Search {
			ors[i] = f + " ILIKE $" + n
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	return strings.Join(conds, " AND "), args
}

// order resolves the sort key against the allow-list. Only allow-listed
// field names ever reach the SQL text.
func (r *relation[T]) order(q listing.Query) (listing.Query, string) {
	q, field := r.desc.Resolve(q)
	dir := "ASC"
	if q.Dir == listing.Desc {
		dir = "DESC"
	}
	return q, field + " " + dir + ", id ASC"
}

func (r *relation[T]) collect(rows pgx.Rows) ([]T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return r.scan(row)
	})
}

func (r *relation[T]) List(ctx context.Context, tid tenant.ID, q listing.Query) (page *listing.Page[T], err error) {
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "list", tid)
	defer func() { otel.End(span, err) }()

	q, orderBy := r.order(q)
	where, args := r.filter(tid, q, record.Live)

	// Count and page are read from one snapshot so the page math matches
	// the rows returned.
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly},
		func(tx pgx.Tx) error {
			var total int64
			if err := tx.QueryRow(ctx, `SELECT count(*) FROM `+r.source+` WHERE `+where, args...).Scan(&total); err != nil {
				return fmt.Errorf("count: %w", err)
			}

			w := listing.Paginate(total, q.Page, q.PageSize)
			n := len(args)
			rows, err := tx.Query(ctx,
				`SELECT `+r.columns+` FROM `+r.source+` WHERE `+where+
					` ORDER BY `+orderBy+
					` LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
				append(args, w.Limit, w.Offset)...)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			items, err := r.collect(rows)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			page = listing.NewPage(items, total, w, q)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.desc.Kind, err)
	}
	return page, nil
}

func (r *relation[T]) ListAll(ctx context.Context, tid tenant.ID, q listing.Query, vis record.Visibility) (items []T, err error) {
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "list_all", tid)
	defer func() { otel.End(span, err) }()

	q, orderBy := r.order(q)
	where, args := r.filter(tid, q, vis)

	rows, err := r.pool.Query(ctx,
		`SELECT `+r.columns+` FROM `+r.source+` WHERE `+where+` ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, fmt.Errorf("list all %s: %w", r.desc.Kind, err)
	}
	items, err = r.collect(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.desc.Kind, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *relation[T]) Get(ctx context.Context, tid tenant.ID, id string) (rec *T, err error) {
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "get", tid)
	defer func() { otel.End(span, err) }()

	if id, err = listing.CanonicalID(r.desc.Kind, id); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+r.columns+` FROM `+r.source+` WHERE tenant_id = $1 AND id = $2 AND is_deleted = FALSE`,
		tid.String(), id)
	v, err := r.scan(row)
	if err != nil {
		return nil, notFoundWrap(err, "get %s %s", r.desc.Kind, id)
	}
	return &v, nil
}

func (r *relation[T]) SoftDelete(ctx context.Context, tid tenant.ID, id string) (err error) {
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "delete", tid)
	defer func() { otel.End(span, err) }()

	if id, err = listing.CanonicalID(r.desc.Kind, id); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+r.table+` SET is_deleted = TRUE, deleted_at = now(), updated_at = now()
		 WHERE tenant_id = $1 AND id = $2 AND is_deleted = FALSE`,
		tid.String(), id)
	return execExpectOne(tag, err, "delete %s %s", r.desc.Kind, id)
}

func (r *relation[T]) ToggleActive(ctx context.Context, tid tenant.ID, id string) (err error) {
	if !r.desc.Toggle {
		return fmt.Errorf("toggle %s: %w", r.desc.Kind, domain.ErrUnsupported)
	}
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "toggle", tid)
	defer func() { otel.End(span, err) }()

	if id, err = listing.CanonicalID(r.desc.Kind, id); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+r.table+` SET is_active = NOT is_active, updated_at = now()
		 WHERE tenant_id = $1 AND id = $2 AND is_deleted = FALSE`,
		tid.String(), id)
	return execExpectOne(tag, err, "toggle %s %s", r.desc.Kind, id)
}

// bulkSet maps a bulk action to its SET clause.
var bulkSet = map[listing.Action]string{
	listing.Activate:   "is_active = TRUE",
	listing.Deactivate: "is_active = FALSE",
	listing.Delete:     "is_deleted = TRUE, deleted_at = now()",
}

func (r *relation[T]) Bulk(ctx context.Context, tid tenant.ID, ids []string, action listing.Action) (changed []string, err error) {
	set, ok := bulkSet[action]
	if !ok || !r.desc.Supports(action) || len(ids) == 0 {
		return nil, nil
	}
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "bulk_"+string(action), tid)
	defer func() { otel.End(span, err) }()

	rows, err := r.pool.Query(ctx,
		`UPDATE `+r.table+` SET `+set+`, updated_at = now()
		 WHERE tenant_id = $1 AND is_deleted = FALSE AND id = ANY($2::uuid[])
		 RETURNING id::text`,
		tid.String(), ids)
	if err != nil {
		return nil, fmt.Errorf("bulk %s %s: %w", action, r.desc.Kind, err)
	}
	changed, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("bulk %s %s: %w", action, r.desc.Kind, err)
	}
	return changed, nil
}

func (r *relation[T]) Count(ctx context.Context, tid tenant.ID) (n int64, err error) {
	ctx, span := otel.StartStoreSpan(ctx, r.desc.Kind, "count", tid)
	defer func() { otel.End(span, err) }()

	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM `+r.table+` WHERE tenant_id = $1 AND is_deleted = FALSE`,
		tid.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.desc.Kind, err)
	}
	return n, nil
}

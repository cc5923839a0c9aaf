package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/export"
	"github.com/ERPlora/module-training/internal/service"
)

// ---------------------------------------------------------------------------
// Generic per-kind handlers
// ---------------------------------------------------------------------------

// KindService is what the handlers need from a record kind's service.
// *service.ProgramService, *service.SkillService and
// *service.EnrollmentService satisfy it.
type KindService[T, In any] interface {
	Descriptor() *listing.Descriptor[T]
	List(ctx context.Context, tid tenant.ID, q listing.Query) (*listing.Page[T], error)
	Get(ctx context.Context, tid tenant.ID, id string) (*T, error)
	Export(ctx context.Context, tid tenant.ID, q listing.Query, f export.Format, w io.Writer) error
	Create(ctx context.Context, tid tenant.ID, in In) (*service.Saved[T], error)
	Update(ctx context.Context, tid tenant.ID, id string, in In) (*service.Saved[T], error)
	Delete(ctx context.Context, tid tenant.ID, id string) (*listing.Page[T], error)
	Toggle(ctx context.Context, tid tenant.ID, id string) (*listing.Page[T], error)
	Bulk(ctx context.Context, tid tenant.ID, rawIDs, action string) (*service.BulkResult[T], error)
}

// kind binds a KindService to its form handling.
type kind[T, In any] struct {
	svc KindService[T, In]
	// parse reads submitted form values into an input.
	parse func(record.Form) (In, error)
	// blank returns the defaults of an empty add form.
	blank func() In
	// values returns the input that pre-fills the edit form of a record.
	values func(*T) In
	// choices returns extra data forms need, such as reference options.
	choices func(ctx context.Context, tid tenant.ID) (any, error)
	slots   *export.Slots
	maxForm int64
}

// formResponse is the payload of the add and edit form endpoints.
type formResponse[In any] struct {
	Kind    string `json:"kind"`
	Mode    string `json:"mode"`
	ID      string `json:"id,omitempty"`
	Values  In     `json:"values"`
	Choices any    `json:"choices,omitempty"`
}

// mount registers the kind's routes on r, relative to /{kind}.
func (k *kind[T, In]) mount(r chi.Router, exportLimit func(http.Handler) http.Handler) {
	r.With(onlyExports(exportLimit)).Get("/", k.list)
	r.Get("/add/", k.addForm)
	r.Post("/add/", k.create)
	r.Post("/bulk/", k.bulk)
	r.Get("/{id}/edit/", k.editForm)
	r.Post("/{id}/edit/", k.update)
	r.Post("/{id}/delete/", k.remove)
	r.Post("/{id}/toggle/", k.toggle)
}

// onlyExports applies limit to download requests and passes listings
// through untouched. An unrecognized export value is a listing.
func onlyExports(limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit == nil {
			return next
		}
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := export.ParseFormat(r.URL.Query().Get("export")); err == nil {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (k *kind[T, In]) notFound() string {
	return k.svc.Descriptor().Kind + " record not found"
}

func (k *kind[T, In]) list(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	params := r.URL.Query()
	q := listing.ParseQuery(params)

	if f, err := export.ParseFormat(params.Get("export")); err == nil {
		k.download(w, r, tid, q, f)
		return
	}

	page, err := k.svc.List(r.Context(), tid, q)
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// download renders the full export into memory first, so a failure
// mid-way still yields a proper error response instead of a truncated file.
func (k *kind[T, In]) download(w http.ResponseWriter, r *http.Request, tid tenant.ID, q listing.Query, f export.Format) {
	var buf bytes.Buffer
	err := k.slots.Run(r.Context(), func() error {
		return k.svc.Export(r.Context(), tid, q, f, &buf)
	})
	if errors.Is(err, export.ErrBusy) {
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, "too many exports in progress, retry shortly")
		return
	}
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(k.svc.Descriptor().Kind, f)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (k *kind[T, In]) addForm(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	k.writeForm(w, r, tid, "add", "", k.blank())
}

func (k *kind[T, In]) editForm(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := k.svc.Get(r.Context(), tid, id)
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	k.writeForm(w, r, tid, "edit", id, k.values(rec))
}

func (k *kind[T, In]) writeForm(w http.ResponseWriter, r *http.Request, tid tenant.ID, mode, id string, values In) {
	res := formResponse[In]{Kind: k.svc.Descriptor().Kind, Mode: mode, ID: id, Values: values}
	if k.choices != nil {
		c, err := k.choices(r.Context(), tid)
		if err != nil {
			writeInternalError(w, r, err)
			return
		}
		res.Choices = c
	}
	writeJSON(w, http.StatusOK, res)
}

func (k *kind[T, In]) create(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok || !readForm(w, r, k.maxForm) {
		return
	}
	in, err := k.parse(r.PostForm)
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	saved, err := k.svc.Create(r.Context(), tid, in)
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (k *kind[T, In]) update(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok || !readForm(w, r, k.maxForm) {
		return
	}
	in, err := k.parse(r.PostForm)
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	saved, err := k.svc.Update(r.Context(), tid, chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (k *kind[T, In]) remove(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	page, err := k.svc.Delete(r.Context(), tid, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (k *kind[T, In]) toggle(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	page, err := k.svc.Toggle(r.Context(), tid, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (k *kind[T, In]) bulk(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok || !readForm(w, r, k.maxForm) {
		return
	}
	res, err := k.svc.Bulk(r.Context(), tid, r.PostForm.Get("ids"), r.PostForm.Get("action"))
	if err != nil {
		writeDomainError(w, r, err, k.notFound())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

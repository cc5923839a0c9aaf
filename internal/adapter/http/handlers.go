package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/skill"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/export"
	"github.com/ERPlora/module-training/internal/service"
)

// healthTimeout bounds each dependency probe of the health endpoint.
const healthTimeout = 2 * time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connectivity reports whether the message queue connection is up.
type Connectivity interface {
	IsConnected() bool
}

// Handlers holds the services the HTTP handlers delegate to.
type Handlers struct {
	Programs    *service.ProgramService
	Skills      *service.SkillService
	Enrollments *service.EnrollmentService
	Dashboard   *service.DashboardService
	Settings    *service.SettingsService

	DB    Pinger
	Queue Connectivity // nil when NATS is disabled

	// Exports bounds concurrent export renders; nil leaves them unbounded.
	Exports *export.Slots

	MaxFormBytes int64
}

// programChoice is one option of the program select on enrollment forms.
type programChoice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handlers) mountKinds(r chi.Router, exportLimit func(http.Handler) http.Handler) {
	programs := &kind[program.Program, program.Input]{
		svc:     h.Programs,
		parse:   func(f record.Form) (program.Input, error) { return program.ParseForm(f), nil },
		blank:   program.Blank,
		values:  (*program.Program).Input,
		slots:   h.Exports,
		maxForm: h.MaxFormBytes,
	}
	skills := &kind[skill.Skill, skill.Input]{
		svc:     h.Skills,
		parse:   func(f record.Form) (skill.Input, error) { return skill.ParseForm(f), nil },
		blank:   skill.Blank,
		values:  (*skill.Skill).Input,
		slots:   h.Exports,
		maxForm: h.MaxFormBytes,
	}
	enrollments := &kind[enrollment.Enrollment, enrollment.Input]{
		svc:     h.Enrollments,
		parse:   enrollment.ParseForm,
		blank:   enrollment.Blank,
		values:  (*enrollment.Enrollment).Input,
		choices: h.programChoices,
		slots:   h.Exports,
		maxForm: h.MaxFormBytes,
	}

	r.Route("/"+program.Listing.Kind, func(r chi.Router) { programs.mount(r, exportLimit) })
	r.Route("/"+skill.Listing.Kind, func(r chi.Router) { skills.mount(r, exportLimit) })
	r.Route("/"+enrollment.Listing.Kind, func(r chi.Router) { enrollments.mount(r, exportLimit) })
}

func (h *Handlers) programChoices(ctx context.Context, tid tenant.ID) (any, error) {
	ps, err := h.Enrollments.Programs(ctx, tid)
	if err != nil {
		return nil, err
	}
	out := make([]programChoice, len(ps))
	for i := range ps {
		out[i] = programChoice{ID: ps[i].ID, Name: ps[i].Name}
	}
	return map[string]any{"programs": out}, nil
}

// DashboardPage returns the live record counts of the caller's tenant.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	sum, err := h.Dashboard.Summary(r.Context(), tid)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// SettingsPage returns the module settings placeholder.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	tid, ok := requireTenant(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Settings.Get(tid))
}

type healthStatus struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	NATS     string `json:"nats"`
}

// Health reports liveness and the state of the backing services. It
// answers 503 when postgres is unreachable; a missing NATS only degrades
// cross-instance events and keeps the service healthy.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	st := healthStatus{Status: "ok", Postgres: "ok", NATS: "disabled"}
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if h.DB == nil || h.DB.Ping(ctx) != nil {
		st.Status, st.Postgres = "unavailable", "down"
		code = http.StatusServiceUnavailable
	}
	if h.Queue != nil {
		st.NATS = "ok"
		if !h.Queue.IsConnected() {
			st.NATS = "down"
		}
	}
	writeJSON(w, code, st)
}

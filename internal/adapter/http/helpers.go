package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/middleware"
)

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// readForm parses a url-encoded body of at most limit bytes. On failure it
// writes the error response and returns false.
func readForm(w http.ResponseWriter, r *http.Request, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid form body")
		}
		return false
	}
	return true
}

// requireTenant returns the caller's tenant, or writes a 401 and returns
// false. Routes sit behind the session middleware, so this only fails when
// a handler is mounted without it.
func requireTenant(w http.ResponseWriter, r *http.Request) (tenant.ID, bool) {
	tid, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization required")
	}
	return tid, ok
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrValidation):
		msg := err.Error()
		if i := strings.Index(msg, domain.ErrValidation.Error()+": "); i >= 0 {
			msg = msg[i+len(domain.ErrValidation.Error())+2:]
		}
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrUnsupported):
		writeError(w, http.StatusMethodNotAllowed, "operation not supported for this kind")
	default:
		writeInternalError(w, r, err)
	}
}

// writeInternalError logs the actual error server-side and returns a generic message to the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

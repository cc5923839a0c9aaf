package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes holds what MountRoutes needs besides the handlers.
type Routes struct {
	// BasePath is where the module is mounted, e.g. "/training".
	BasePath string
	// Auth admits only requests with a valid session.
	Auth func(http.Handler) http.Handler
	// ExportLimit throttles downloads; nil disables throttling.
	ExportLimit func(http.Handler) http.Handler
	// WS upgrades to the tenant change feed; nil leaves /ws unmounted.
	WS http.HandlerFunc
}

// MountRoutes registers the health probe, the change feed and the module
// routes on r.
//
//	GET  {base}/                      dashboard counts
//	GET  {base}/settings/             settings placeholder
//	GET  {base}/{kind}/               listing, or a download with ?export=
//	GET  {base}/{kind}/add/           blank form
//	POST {base}/{kind}/add/           create
//	GET  {base}/{kind}/{id}/edit/     pre-filled form
//	POST {base}/{kind}/{id}/edit/     update
//	POST {base}/{kind}/{id}/delete/   soft-delete
//	POST {base}/{kind}/{id}/toggle/   flip is_active
//	POST {base}/{kind}/bulk/          bulk action over ids
func MountRoutes(r chi.Router, h *Handlers, rt Routes) {
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(rt.Auth)

		if rt.WS != nil {
			r.Get("/ws", rt.WS)
		}

		r.Route(rt.BasePath, func(r chi.Router) {
			r.Use(VaryPartial)

			r.Get("/", h.DashboardPage)
			r.Get("/settings/", h.SettingsPage)
			h.mountKinds(r, rt.ExportLimit)
		})
	})
}

package server

import (
	"net/http"
)

// DashboardHandler is the landing page for signed-in users. Page rendering lives in the
// front end; this returns the resolved session so the front end can hydrate from it.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := ProfileFromContext(r.Context())
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"appName": s.config.GetAppName(),
			"profile": profile,
		})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	}
}

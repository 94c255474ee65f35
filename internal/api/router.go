package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jbrinkw/daybook/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the attachments directory for uploads.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Project pages.
	r.Get("/hierarchy", h.Hierarchy)
	r.Get("/projects/{id}", h.ProjectText)

	// Dated entries: range query and append.
	r.Get("/notes", h.NotesByDateRange)
	r.Post("/notes", h.AppendNote)

	// Entries index.
	r.Get("/search", h.Search)
	r.Get("/recent", h.Recent)
	r.Get("/stats", h.Stats)

	// Attachments upload (auth-protected). Serving is mounted at the
	// server root so returned /attachments URLs resolve.
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jbrinkw/daybook/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// projectID extracts the {id} URL parameter. Supports encoded characters
// from OpenAPI clients (e.g. Eco%20AI).
func projectID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Hierarchy handles GET /api/hierarchy.
//
//	@Summary		Get the project hierarchy as rendered text
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	Hierarchy
//	@Security		BearerAuth
//	@Router			/hierarchy [get]
func (h *Handler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetProjectHierarchy(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ProjectText handles GET /api/projects/{id}.
//
//	@Summary		Get a project's root page and note page text
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id or display name"
//	@Success		200	{object}	ProjectText
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [get]
func (h *Handler) ProjectText(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	out, err := h.svc.GetProjectText(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// NotesByDateRange handles GET /api/notes.
//
//	@Summary		Get dated note entries within a date range
//	@Tags			notes
//	@Produce		json
//	@Param			start	query		string	true	"Start date (MM/DD/YY)"
//	@Param			end		query		string	true	"End date (MM/DD/YY)"
//	@Success		200		{object}	DateRange
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) NotesByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" || end == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("start and end query parameters are required"))
		return
	}
	out, err := h.svc.GetNotesByDateRange(r.Context(), start, end)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AppendNote handles POST /api/notes.
//
//	@Summary		Append content to today's entry in a project's note file
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AppendNoteRequest	true	"Append request"
//	@Success		200		{object}	NoteUpdate
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AppendNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req AppendNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	out, err := h.svc.UpdateProjectNote(r.Context(), req.ProjectID, req.Content, req.SectionID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across indexed entries
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResults
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.svc.SearchEntries(r.Context(), q, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Recent handles GET /api/recent.
//
//	@Summary		Get the most recent entries across all note files
//	@Tags			notes
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries"
//	@Success		200		{object}	RecentList
//	@Security		BearerAuth
//	@Router			/recent [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.svc.RecentEntries(r.Context(), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Stats handles GET /api/stats.
//
//	@Summary		Get entry-index counts
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	VaultStats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Stats(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

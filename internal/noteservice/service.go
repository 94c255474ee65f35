// Package noteservice implements the exposed note operations on top of
// storage, the projects collaborator, and the entries index. All errors
// leaving this package are tagged apperr values.
package noteservice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jbrinkw/daybook/internal/apperr"
	"github.com/jbrinkw/daybook/internal/index"
	"github.com/jbrinkw/daybook/internal/notes"
	"github.com/jbrinkw/daybook/internal/projects"
	"github.com/jbrinkw/daybook/internal/storage"
)

// Hierarchy is the project tree rendered as text: one root per group,
// children as "- name" lines, groups separated by a blank line.
type Hierarchy struct {
	Status    string `json:"status"`
	Hierarchy string `json:"hierarchy"`
}

// ProjectText carries the root page and linked note page of one project.
// Text fields are null when the file is missing or unreadable.
type ProjectText struct {
	Status       string  `json:"status"`
	ProjectID    string  `json:"project_id"`
	RootPagePath string  `json:"root_page_path"`
	RootPageText *string `json:"root_page_text"`
	NotePagePath *string `json:"note_page_path"`
	NotePageText *string `json:"note_page_text"`
}

// DateRange is the result of a date-range query. StartDate and EndDate
// echo the request strings as given, even when the bounds were swapped.
type DateRange struct {
	Status    string              `json:"status"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Entries   []notes.QueryResult `json:"entries"`
}

// NoteUpdate reports what an append did to the project's note file.
type NoteUpdate struct {
	Status       string `json:"status"`
	ProjectID    string `json:"project_id"`
	NoteFile     string `json:"note_file"`
	CreatedFile  bool   `json:"created_file"`
	CreatedEntry bool   `json:"created_entry"`
	Appended     bool   `json:"appended"`
	DateStr      string `json:"date_str"`
}

// SearchHit is a single entry-index search hit.
type SearchHit struct {
	File    string `json:"file"`
	Date    string `json:"date"`
	DateStr string `json:"date_str"`
	Snippet string `json:"snippet"`
}

// SearchResults is the result of a full-text entry search.
type SearchResults struct {
	Status  string      `json:"status"`
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

// RecentList holds the newest indexed entries across the vault.
type RecentList struct {
	Status  string              `json:"status"`
	Entries []notes.QueryResult `json:"entries"`
}

// VaultStats reports entry-index counts.
type VaultStats struct {
	Status  string `json:"status"`
	Files   int    `json:"files"`
	Entries int    `json:"entries"`
}

// Service coordinates storage, project discovery, and the entries index.
// The four note operations re-read the vault on every call; nothing is
// cached between calls.
type Service struct {
	store  storage.Provider
	db     *index.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new note service. db may be nil when the entries
// index is not running; only SearchEntries requires it.
func NewService(store storage.Provider, db *index.DB, logger *slog.Logger) *Service {
	return &Service{store: store, db: db, logger: logger, now: time.Now}
}

// GetProjectHierarchy renders root project names with their immediate
// children, one group per root.
func (s *Service) GetProjectHierarchy(_ context.Context) (*Hierarchy, error) {
	projs, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, rootID := range projects.Roots(projs) {
		root := projs[rootID]
		lines = append(lines, root.DisplayName)
		for _, childID := range root.Children {
			lines = append(lines, "- "+projs[childID].DisplayName)
		}
		lines = append(lines, "")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return &Hierarchy{Status: "success", Hierarchy: strings.Join(lines, "\n")}, nil
}

// GetProjectText returns the root page and note page of the project matching
// projectID by id or display name. A missing or unreadable page leaves its
// text field null rather than failing the call.
func (s *Service) GetProjectText(_ context.Context, projectID string) (*ProjectText, error) {
	if projectID == "" {
		return nil, apperr.Validation("project_id is required")
	}
	projs, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	id, ok := projects.Resolve(projs, projectID)
	if !ok {
		return nil, apperr.NotFound("project not found: %s", projectID)
	}
	proj := projs[id]

	out := &ProjectText{
		Status:       "success",
		ProjectID:    id,
		RootPagePath: proj.FilePath,
	}
	if data, err := s.store.Read(proj.FilePath); err == nil {
		text := string(data)
		out.RootPageText = &text
	}
	if proj.NoteFile != "" {
		notePath := proj.NoteFile
		out.NotePagePath = &notePath
		if exists, _ := s.store.Exists(notePath); exists {
			if data, err := s.store.Read(notePath); err == nil {
				text := string(data)
				out.NotePageText = &text
			}
		}
	}
	return out, nil
}

// GetNotesByDateRange returns all dated entries across the vault's notes
// files whose date lies in [startDate, endDate], newest first. Reversed
// bounds are swapped before filtering.
func (s *Service) GetNotesByDateRange(_ context.Context, startDate, endDate string) (*DateRange, error) {
	start, err := notes.ParseRangeDate(startDate)
	if err != nil {
		return nil, apperr.Validation("%s", err)
	}
	end, err := notes.ParseRangeDate(endDate)
	if err != nil {
		return nil, apperr.Validation("%s", err)
	}
	results, err := notes.FindInRange(s.store, start, end)
	if err != nil {
		return nil, apperr.Vault("scan notes files: %v", err)
	}
	return &DateRange{
		Status:    "success",
		StartDate: startDate,
		EndDate:   endDate,
		Entries:   nonNilSlice(results),
	}, nil
}

// UpdateProjectNote appends content to today's entry in the project's note
// file, creating the file and the entry as needed. A non-empty sectionID
// places the content under that Markdown section within today's entry.
func (s *Service) UpdateProjectNote(_ context.Context, projectID, content, sectionID string) (*NoteUpdate, error) {
	if projectID == "" {
		return nil, apperr.Validation("project_id is required")
	}
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	projs, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	id, ok := projects.Resolve(projs, projectID)
	if !ok {
		return nil, apperr.NotFound("project not found: %s", projectID)
	}
	proj := projs[id]

	// The linked note file is the target only while it exists on disk;
	// otherwise fall back to the conventional Notes.md beside the root page,
	// seeding it with a note_project_id frontmatter block when absent.
	notePath := proj.NoteFile
	if notePath != "" {
		if exists, err := s.store.Exists(notePath); err != nil || !exists {
			notePath = ""
		}
	}
	createdFile := false
	if notePath == "" {
		notePath = proj.DefaultNoteFile()
		exists, err := s.store.Exists(notePath)
		if err != nil {
			return nil, apperr.IO("stat %s: %v", notePath, err)
		}
		if !exists {
			seed := "---\nnote_project_id: " + id + "\n---\n\n"
			if err := s.store.Write(notePath, []byte(seed)); err != nil {
				return nil, apperr.IO("create %s: %v", notePath, err)
			}
			createdFile = true
		}
	}

	raw, err := s.store.Read(notePath)
	if err != nil {
		return nil, apperr.IO("read %s: %v", notePath, err)
	}
	doc := notes.ParseDocument(string(raw))
	res := notes.AppendToday(doc.Body, notes.TodayToken(s.now()), sectionID, content)
	doc.Body = res.Body
	if err := s.store.Write(notePath, []byte(doc.Join())); err != nil {
		return nil, apperr.IO("write %s: %v", notePath, err)
	}
	s.reindex(notePath)

	return &NoteUpdate{
		Status:       "success",
		ProjectID:    id,
		NoteFile:     notePath,
		CreatedFile:  createdFile,
		CreatedEntry: res.CreatedEntry,
		Appended:     res.Appended,
		DateStr:      res.DateStr,
	}, nil
}

// SearchEntries runs a full-text search over the entries index.
func (s *Service) SearchEntries(_ context.Context, query string, limit int) (*SearchResults, error) {
	if query == "" {
		return nil, apperr.Validation("query is required")
	}
	if s.db == nil {
		return nil, apperr.New(apperr.KindInternal, "entries index not available")
	}
	hits, err := s.db.Search(query, limit)
	if err != nil {
		return nil, apperr.IO("search: %v", err)
	}
	results := make([]SearchHit, len(hits))
	for i, h := range hits {
		results[i] = SearchHit{
			File:    h.Path,
			Date:    h.Date,
			DateStr: h.DateStr,
			Snippet: h.Snippet,
		}
	}
	return &SearchResults{Status: "success", Query: query, Results: results}, nil
}

// RecentEntries returns the newest indexed entries, most recent date first.
func (s *Service) RecentEntries(_ context.Context, limit int) (*RecentList, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindInternal, "entries index not available")
	}
	rows, err := s.db.RecentEntries(limit)
	if err != nil {
		return nil, apperr.IO("recent entries: %v", err)
	}
	entries := make([]notes.QueryResult, len(rows))
	for i, r := range rows {
		entries[i] = notes.QueryResult{File: r.Path, Date: r.Date, DateStr: r.DateStr, Content: r.Content}
	}
	return &RecentList{Status: "success", Entries: entries}, nil
}

// Stats reports how many files and entries the index holds.
func (s *Service) Stats(_ context.Context) (*VaultStats, error) {
	if s.db == nil {
		return nil, apperr.New(apperr.KindInternal, "entries index not available")
	}
	files, entries, err := s.db.Stats()
	if err != nil {
		return nil, apperr.IO("stats: %v", err)
	}
	return &VaultStats{Status: "success", Files: files, Entries: entries}, nil
}

// loadProjects builds a fresh project map and links note files. Every call
// re-walks the vault; there is no cross-call cache.
func (s *Service) loadProjects() (map[string]*projects.Project, error) {
	projs, err := projects.Build(s.store)
	if err != nil {
		return nil, apperr.Vault("build project hierarchy: %v", err)
	}
	if err := projects.LinkNotes(s.store, projs); err != nil {
		return nil, apperr.Vault("link note files: %v", err)
	}
	return projs, nil
}

// reindex refreshes the entries index for one file after a write. The
// write already succeeded, so index failures are logged and swallowed.
func (s *Service) reindex(path string) {
	if s.db == nil {
		return
	}
	data, err := s.store.Read(path)
	if err != nil {
		s.logger.Warn("reindex read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if err := index.IndexFile(s.db, path, data); err != nil {
		s.logger.Warn("reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

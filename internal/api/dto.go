package api

import (
	"github.com/jbrinkw/daybook/internal/noteservice"
)

// AppendNoteRequest is the request body for appending to a project's note.
type AppendNoteRequest struct {
	ProjectID string `json:"project_id" example:"Eco AI" validate:"required"`
	Content   string `json:"content" example:"Ship MVP by end of month" validate:"required"`
	SectionID string `json:"section_id,omitempty" example:"Milestones"`
}

// Operation payloads are shared with the MCP surface (aliased from the
// domain layer).
type (
	// Hierarchy is the rendered project tree response.
	Hierarchy = noteservice.Hierarchy
	// ProjectText is the project page text response.
	ProjectText = noteservice.ProjectText
	// DateRange is the date-range query response.
	DateRange = noteservice.DateRange
	// NoteUpdate is the append response.
	NoteUpdate = noteservice.NoteUpdate
	// SearchResults is the entry search response.
	SearchResults = noteservice.SearchResults
	// RecentList is the recent-entries response.
	RecentList = noteservice.RecentList
	// VaultStats is the index stats response.
	VaultStats = noteservice.VaultStats
)

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/image.png" validate:"required"`
}

package noteservice

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jbrinkw/daybook/internal/apperr"
	"github.com/jbrinkw/daybook/internal/index"
	"github.com/jbrinkw/daybook/internal/storage"
)

// testService builds a service over a fresh vault with a fixed clock
// (June 1 2024, token "6/1/24") and no entries index.
func testService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := NewService(store, nil, logger)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func write(t *testing.T, store storage.Provider, path, content string) {
	t.Helper()
	if err := store.Write(path, []byte(content)); err != nil {
		t.Fatal(err)
	}
}

// seedVault creates two root projects, one with a child.
func seedVault(t *testing.T, store storage.Provider) {
	t.Helper()
	write(t, store, "Projects/Eco AI/Eco AI.md", "---\nproject_id: eco\n---\n\n# Eco AI\n\nAI ecology project.\n")
	write(t, store, "Projects/Eco AI/Roadmap.md", "---\nproject_id: roadmap\nproject_parent: eco\n---\n\n# Roadmap\n")
	write(t, store, "Projects/Open Ethos/Open Ethos.md", "---\nproject_id: ethos\n---\n\n# Open Ethos\n")
}

func TestGetProjectHierarchy(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	got, err := svc.GetProjectHierarchy(context.Background())
	if err != nil {
		t.Fatalf("GetProjectHierarchy: %v", err)
	}
	if got.Status != "success" {
		t.Errorf("status = %q", got.Status)
	}
	want := "Eco AI\n- Roadmap\n\nOpen Ethos"
	if got.Hierarchy != want {
		t.Errorf("hierarchy = %q, want %q", got.Hierarchy, want)
	}
}

func TestGetProjectHierarchyEmptyVault(t *testing.T) {
	svc, _ := testService(t)

	got, err := svc.GetProjectHierarchy(context.Background())
	if err != nil {
		t.Fatalf("GetProjectHierarchy: %v", err)
	}
	if got.Hierarchy != "" {
		t.Errorf("hierarchy = %q, want empty", got.Hierarchy)
	}
}

func TestGetProjectTextByDisplayName(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)
	write(t, store, "Projects/Eco AI/Notes.md", "---\nnote_project_id: eco\n---\n\n6/1/24\n\nstarted research\n")

	got, err := svc.GetProjectText(context.Background(), "eco ai")
	if err != nil {
		t.Fatalf("GetProjectText: %v", err)
	}
	if got.ProjectID != "eco" {
		t.Errorf("project id = %q, want eco", got.ProjectID)
	}
	if got.RootPagePath != "Projects/Eco AI/Eco AI.md" {
		t.Errorf("root page path = %q", got.RootPagePath)
	}
	if got.RootPageText == nil || !strings.Contains(*got.RootPageText, "# Eco AI") {
		t.Errorf("root page text = %v", got.RootPageText)
	}
	if got.NotePagePath == nil || *got.NotePagePath != "Projects/Eco AI/Notes.md" {
		t.Errorf("note page path = %v", got.NotePagePath)
	}
	if got.NotePageText == nil || !strings.Contains(*got.NotePageText, "started research") {
		t.Errorf("note page text = %v", got.NotePageText)
	}
}

func TestGetProjectTextNoLinkedNote(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	got, err := svc.GetProjectText(context.Background(), "ethos")
	if err != nil {
		t.Fatalf("GetProjectText: %v", err)
	}
	if got.NotePagePath != nil || got.NotePageText != nil {
		t.Errorf("note page = %v / %v, want null", got.NotePagePath, got.NotePageText)
	}
	if got.RootPageText == nil {
		t.Error("root page text should be set")
	}
}

func TestGetProjectTextUnknownProject(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	_, err := svc.GetProjectText(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %q, want not_found", apperr.KindOf(err))
	}
}

func TestGetProjectTextMissingID(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.GetProjectText(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %q, want validation", apperr.KindOf(err))
	}
}

func TestGetNotesByDateRangeNormalizesBounds(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)
	write(t, store, "Projects/Eco AI/Notes.md",
		"---\nnote_project_id: eco\n---\n\n6/15/24\n\nlater entry\n\n6/1/24\n\nearlier entry\n")

	forward, err := svc.GetNotesByDateRange(context.Background(), "06/01/24", "06/15/24")
	if err != nil {
		t.Fatalf("forward range: %v", err)
	}
	if len(forward.Entries) != 2 {
		t.Fatalf("forward entries = %d, want 2", len(forward.Entries))
	}
	if forward.Entries[0].Date != "2024-06-15" || forward.Entries[1].Date != "2024-06-01" {
		t.Errorf("order = %s, %s", forward.Entries[0].Date, forward.Entries[1].Date)
	}
	if forward.StartDate != "06/01/24" || forward.EndDate != "06/15/24" {
		t.Errorf("echoed bounds = %s..%s", forward.StartDate, forward.EndDate)
	}

	reversed, err := svc.GetNotesByDateRange(context.Background(), "06/15/24", "06/01/24")
	if err != nil {
		t.Fatalf("reversed range: %v", err)
	}
	if len(reversed.Entries) != 2 {
		t.Fatalf("reversed entries = %d, want 2", len(reversed.Entries))
	}
	// Reversed bounds are echoed as given.
	if reversed.StartDate != "06/15/24" || reversed.EndDate != "06/01/24" {
		t.Errorf("echoed bounds = %s..%s", reversed.StartDate, reversed.EndDate)
	}
}

func TestGetNotesByDateRangeEmptyResult(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	got, err := svc.GetNotesByDateRange(context.Background(), "01/01/20", "01/02/20")
	if err != nil {
		t.Fatalf("GetNotesByDateRange: %v", err)
	}
	if got.Entries == nil {
		t.Error("entries should be an empty slice, not nil")
	}
	if len(got.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(got.Entries))
	}
}

func TestGetNotesByDateRangeBadDate(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.GetNotesByDateRange(context.Background(), "6-1-24", "06/15/24")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %q, want validation", apperr.KindOf(err))
	}
	if err.Error() != "dates must be in MM/DD/YY format" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestUpdateProjectNoteCreatesFile(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	got, err := svc.UpdateProjectNote(context.Background(), "ethos", "kickoff meeting", "")
	if err != nil {
		t.Fatalf("UpdateProjectNote: %v", err)
	}
	if !got.CreatedFile || !got.CreatedEntry || got.Appended {
		t.Errorf("flags = file:%v entry:%v appended:%v", got.CreatedFile, got.CreatedEntry, got.Appended)
	}
	if got.DateStr != "6/1/24" {
		t.Errorf("date_str = %q, want 6/1/24", got.DateStr)
	}
	if got.NoteFile != "Projects/Open Ethos/Notes.md" {
		t.Errorf("note_file = %q", got.NoteFile)
	}

	data, err := store.Read(got.NoteFile)
	if err != nil {
		t.Fatal(err)
	}
	want := "---\nnote_project_id: ethos\n---\n\n6/1/24\n\nkickoff meeting\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestUpdateProjectNoteSameDaySection(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	first, err := svc.UpdateProjectNote(context.Background(), "ethos", "ship MVP", "Milestones")
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	if !first.CreatedEntry {
		t.Error("first call should create the entry")
	}

	second, err := svc.UpdateProjectNote(context.Background(), "ethos", "demo booked", "Milestones")
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if second.CreatedEntry {
		t.Error("second call should not create another entry")
	}
	if !second.Appended {
		t.Error("second call should report appended")
	}

	data, err := store.Read(second.NoteFile)
	if err != nil {
		t.Fatal(err)
	}
	want := "---\nnote_project_id: ethos\n---\n\n6/1/24\n\n## Milestones\n\nship MVP\n\ndemo booked\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
	if strings.Count(string(data), "## Milestones") != 1 {
		t.Error("section header duplicated")
	}
}

func TestUpdateProjectNoteNoSectionLandsAfterSections(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)
	write(t, store, "Projects/Eco AI/Notes.md",
		"---\nnote_project_id: eco\n---\n\n6/1/24\n\n## Milestones\n\nship MVP\n")

	got, err := svc.UpdateProjectNote(context.Background(), "eco", "standup notes", "")
	if err != nil {
		t.Fatalf("UpdateProjectNote: %v", err)
	}
	if got.CreatedFile || got.CreatedEntry || !got.Appended {
		t.Errorf("flags = file:%v entry:%v appended:%v", got.CreatedFile, got.CreatedEntry, got.Appended)
	}

	data, err := store.Read("Projects/Eco AI/Notes.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "ship MVP\n\nstandup notes\n") {
		t.Errorf("content should land after the section's content, got %q", data)
	}
	if strings.Count(string(data), "## Milestones") != 1 {
		t.Error("section must not be split or duplicated")
	}
}

func TestUpdateProjectNoteUnknownProjectMutatesNothing(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	_, err := svc.UpdateProjectNote(context.Background(), "nope", "content", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %q, want not_found", apperr.KindOf(err))
	}

	for _, p := range []string{"Projects/Eco AI/Notes.md", "Projects/Open Ethos/Notes.md"} {
		if exists, _ := store.Exists(p); exists {
			t.Errorf("%s was created by a failed call", p)
		}
	}
}

func TestUpdateProjectNoteValidation(t *testing.T) {
	svc, store := testService(t)
	seedVault(t, store)

	_, err := svc.UpdateProjectNote(context.Background(), "", "content", "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing project_id: kind = %q", apperr.KindOf(err))
	}
	_, err = svc.UpdateProjectNote(context.Background(), "eco", "", "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing content: kind = %q", apperr.KindOf(err))
	}
}

func testIndexDB(t *testing.T) *index.DB {
	t.Helper()
	f, err := os.CreateTemp("", "daybook-svc-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	db, err := index.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpdateProjectNoteReindexes(t *testing.T) {
	svc, store := testService(t)
	svc.db = testIndexDB(t)
	seedVault(t, store)

	got, err := svc.UpdateProjectNote(context.Background(), "eco", "research kickoff", "")
	if err != nil {
		t.Fatalf("UpdateProjectNote: %v", err)
	}

	rows, err := svc.db.FileEntries(got.NoteFile)
	if err != nil {
		t.Fatalf("FileEntries: %v", err)
	}
	if len(rows) != 1 || rows[0].DateStr != "6/1/24" {
		t.Errorf("indexed rows = %+v", rows)
	}
}

func TestSearchEntries(t *testing.T) {
	svc, store := testService(t)
	svc.db = testIndexDB(t)
	seedVault(t, store)

	if _, err := svc.UpdateProjectNote(context.Background(), "eco", "started research phase", ""); err != nil {
		t.Fatal(err)
	}

	got, err := svc.SearchEntries(context.Background(), "research", 10)
	if err != nil {
		t.Fatalf("SearchEntries: %v", err)
	}
	if len(got.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(got.Results))
	}
	hit := got.Results[0]
	if hit.File != "Projects/Eco AI/Notes.md" || hit.DateStr != "6/1/24" {
		t.Errorf("hit = %+v", hit)
	}
}

func TestSearchEntriesValidation(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.SearchEntries(context.Background(), "", 10)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %q, want validation", apperr.KindOf(err))
	}
}

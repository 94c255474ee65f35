package index

import (
	"os"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "daybook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM note_files`).Scan(&count); err != nil {
		t.Fatalf("note_files table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
}

func TestReplaceFileEntriesAndGetChecksum(t *testing.T) {
	db := testDB(t)
	rows := []EntryRow{
		{Path: "Notes.md", Position: 0, Date: "2024-06-02", DateStr: "6/2/24", Content: "later"},
		{Path: "Notes.md", Position: 1, Date: "2024-06-01", DateStr: "6/1/24", Content: "earlier"},
	}
	if err := db.ReplaceFileEntries("Notes.md", "abc123", rows); err != nil {
		t.Fatalf("ReplaceFileEntries: %v", err)
	}
	cs, err := db.GetChecksum("Notes.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	got, err := db.FileEntries("Notes.md")
	if err != nil {
		t.Fatalf("FileEntries: %v", err)
	}
	if len(got) != 2 || got[0].DateStr != "6/2/24" || got[1].DateStr != "6/1/24" {
		t.Errorf("entries = %+v", got)
	}
}

func TestReplaceFileEntries_ReplacesOldRows(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("up.md", "1", []EntryRow{
		{Position: 0, Date: "2024-06-01", DateStr: "6/1/24", Content: "old"},
	})
	_ = db.ReplaceFileEntries("up.md", "2", []EntryRow{
		{Position: 0, Date: "2024-06-02", DateStr: "6/2/24", Content: "new"},
	})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	got, _ := db.FileEntries("up.md")
	if len(got) != 1 || got[0].Content != "new" {
		t.Errorf("entries = %+v, want the replacement row only", got)
	}
}

func TestReplaceFileEntries_EmptyClearsFile(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("e.md", "1", []EntryRow{
		{Position: 0, Date: "2024-06-01", DateStr: "6/1/24", Content: "x"},
	})
	if err := db.ReplaceFileEntries("e.md", "2", nil); err != nil {
		t.Fatalf("ReplaceFileEntries: %v", err)
	}
	got, _ := db.FileEntries("e.md")
	if len(got) != 0 {
		t.Errorf("entries = %+v, want none", got)
	}
}

func TestDeleteFile(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("del.md", "x", []EntryRow{
		{Position: 0, Date: "2024-06-01", DateStr: "6/1/24", Content: "bye"},
	})

	if err := db.DeleteFile("del.md"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted file still has checksum %q", cs)
	}
	got, _ := db.FileEntries("del.md")
	if len(got) != 0 {
		t.Errorf("deleted file still has entries: %+v", got)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("a.md", "1", nil)
	_ = db.ReplaceFileEntries("b.md", "2", nil)

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(all) != 2 || all["a.md"] != "1" || all["b.md"] != "2" {
		t.Errorf("checksums = %v", all)
	}
}

func TestRecentEntries_Ordering(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("b.md", "1", []EntryRow{
		{Position: 0, Date: "2024-06-15", DateStr: "6/15/24", Content: "b late"},
		{Position: 1, Date: "2024-06-01", DateStr: "6/1/24", Content: "b early"},
	})
	_ = db.ReplaceFileEntries("a.md", "2", []EntryRow{
		{Position: 0, Date: "2024-06-15", DateStr: "6/15/24", Content: "a late"},
	})

	got, err := db.RecentEntries(10)
	if err != nil {
		t.Fatalf("RecentEntries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Path != "a.md" || got[1].Path != "b.md" || got[2].Content != "b early" {
		t.Errorf("order = %+v", got)
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("a.md", "1", []EntryRow{
		{Position: 0, Date: "2024-06-01", DateStr: "6/1/24", Content: "x"},
		{Position: 1, Date: "2024-06-02", DateStr: "6/2/24", Content: "y"},
	})
	files, entries, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if files != 1 || entries != 2 {
		t.Errorf("stats = %d files, %d entries, want 1, 2", files, entries)
	}
}

func TestIndexFile_ScansEntries(t *testing.T) {
	db := testDB(t)
	raw := []byte("---\nnote_project_id: p\n---\n\n6/2/24\n\nsecond\n\n6/1/24:\n\nfirst\n")
	if err := IndexFile(db, "Notes.md", raw); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	got, err := db.FileEntries("Notes.md")
	if err != nil {
		t.Fatalf("FileEntries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2024-06-02" || got[0].Position != 0 {
		t.Errorf("first row = %+v", got[0])
	}
	if got[1].DateStr != "6/1/24" {
		t.Errorf("second row date_str = %q", got[1].DateStr)
	}
	cs, _ := db.GetChecksum("Notes.md")
	if cs == "" {
		t.Error("checksum not stored")
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceFileEntries("s.md", "1", []EntryRow{
		{Position: 0, Date: "2024-06-01", DateStr: "6/1/24", Content: "uniqueword appears here"},
	})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

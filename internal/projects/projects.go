// Package projects discovers the project hierarchy from Markdown
// frontmatter and links dated-notes files to their projects. A project page
// is any .md file whose frontmatter carries a project_id field; parents are
// declared with project_parent and dated-notes files claim their project
// with note_project_id.
package projects

import (
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbrinkw/daybook/internal/notes"
	"github.com/jbrinkw/daybook/internal/storage"
)

// Project is one project page found in the vault. Paths are vault-relative.
type Project struct {
	ID          string
	DisplayName string
	FilePath    string   // root page
	NoteFile    string   // linked dated-notes file, empty when unlinked
	Children    []string // child project ids, ordered by display name
}

// DefaultNoteFile returns the conventional dated-notes path next to the
// project's root page, used when no note file is linked yet.
func (p *Project) DefaultNoteFile() string {
	return path.Join(path.Dir(p.FilePath), "Notes.md")
}

// frontmatter carries the only fields the hierarchy reads.
type frontmatter struct {
	ProjectID     string `yaml:"project_id"`
	ProjectParent string `yaml:"project_parent"`
	NoteProjectID string `yaml:"note_project_id"`
}

// parseFields splits raw file content and decodes the hierarchy fields from
// its frontmatter. Invalid YAML means no usable fields, not an error.
func parseFields(raw string) (frontmatter, []string) {
	doc := notes.ParseDocument(raw)
	var fm frontmatter
	if len(doc.Frontmatter) >= 2 {
		inner := strings.Join(doc.Frontmatter[1:len(doc.Frontmatter)-1], "")
		_ = yaml.Unmarshal([]byte(inner), &fm)
	}
	return fm, doc.Body
}

// displayName returns the first H1 heading of the body, or id when the page
// has none.
func displayName(id string, body []string) string {
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return id
}

// Build walks every .md file in the vault and collects project pages. The
// first page claiming an id wins; children attach to their project_parent
// when it exists, otherwise the child stands as a root.
func Build(store storage.Provider) (map[string]*Project, error) {
	infos, err := store.List("")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Project)
	parents := make(map[string]string)
	for _, info := range infos {
		raw, err := store.Read(info.Path)
		if err != nil {
			continue
		}
		fm, body := parseFields(string(raw))
		if fm.ProjectID == "" {
			continue
		}
		if _, dup := out[fm.ProjectID]; dup {
			continue
		}
		out[fm.ProjectID] = &Project{
			ID:          fm.ProjectID,
			DisplayName: displayName(fm.ProjectID, body),
			FilePath:    info.Path,
		}
		if fm.ProjectParent != "" {
			parents[fm.ProjectID] = fm.ProjectParent
		}
	}
	for id, parent := range parents {
		p, ok := out[parent]
		if !ok {
			continue
		}
		p.Children = append(p.Children, id)
	}
	for _, p := range out {
		sortIDs(out, p.Children)
	}
	return out, nil
}

// LinkNotes scans dated-notes files for a note_project_id field and attaches
// each project's first claimant in walk order.
func LinkNotes(store storage.Provider, projs map[string]*Project) error {
	paths, err := store.ListNotes()
	if err != nil {
		return err
	}
	for _, rel := range paths {
		raw, err := store.Read(rel)
		if err != nil {
			continue
		}
		fm, _ := parseFields(string(raw))
		if fm.NoteProjectID == "" {
			continue
		}
		p, ok := projs[fm.NoteProjectID]
		if !ok || p.NoteFile != "" {
			continue
		}
		p.NoteFile = rel
	}
	return nil
}

// Roots returns the ids of projects that are nobody's child, ordered by
// display name.
func Roots(projs map[string]*Project) []string {
	child := make(map[string]struct{})
	for _, p := range projs {
		for _, c := range p.Children {
			child[c] = struct{}{}
		}
	}
	var roots []string
	for id := range projs {
		if _, ok := child[id]; !ok {
			roots = append(roots, id)
		}
	}
	sortIDs(projs, roots)
	return roots
}

// Resolve maps a user-supplied identifier to a canonical project id: exact
// id match first, then display name, both case-insensitive.
func Resolve(projs map[string]*Project, query string) (string, bool) {
	q := strings.ToLower(query)
	ids := make([]string, 0, len(projs))
	for id := range projs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if strings.ToLower(id) == q {
			return id, true
		}
	}
	for _, id := range ids {
		if strings.ToLower(projs[id].DisplayName) == q {
			return id, true
		}
	}
	return "", false
}

// sortIDs orders ids by display name, case-insensitive, falling back to the
// id itself.
func sortIDs(projs map[string]*Project, ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := projs[ids[i]], projs[ids[j]]
		an, bn := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
}

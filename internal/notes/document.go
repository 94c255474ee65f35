// Package notes implements the dated-note Markdown engine: frontmatter
// splitting, date-keyed entry scanning, date-range queries across notes
// files, and section-aware appends into today's entry.
package notes

import "strings"

const frontmatterDelim = "---"

// Lines splits raw note content into lines, each normalized to end with a
// single "\n". The final line gains a terminator if it lacks one, so splice
// offsets computed over the result stay stable.
func Lines(content string) []string {
	if content == "" {
		return nil
	}
	parts := strings.SplitAfter(content, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] += "\n"
	}
	return parts
}

// SplitFrontmatter isolates a leading frontmatter block from normalized
// lines. It returns the frontmatter lines, both delimiter lines included,
// and the index of the first body line. The block must open with a line
// whose trimmed form is exactly three dashes and close with another; a
// missing terminator means the file has no frontmatter at all (the whole
// file is body), so malformed metadata is kept as content rather than lost.
// A four-dash line is not a delimiter.
func SplitFrontmatter(lines []string) ([]string, int) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelim {
		return nil, 0
	}
	fm := []string{lines[0]}
	for i := 1; i < len(lines); i++ {
		fm = append(fm, lines[i])
		if strings.TrimSpace(lines[i]) == frontmatterDelim {
			return fm, i + 1
		}
	}
	return nil, 0
}

// Document is one note file split into frontmatter and body lines. Both
// slices hold normalized lines; Frontmatter is nil when the file has none.
type Document struct {
	Frontmatter []string
	Body        []string
}

// ParseDocument normalizes raw file content and splits off the frontmatter
// block. The splitter never inspects frontmatter content.
func ParseDocument(content string) Document {
	lines := Lines(content)
	fm, bodyIdx := SplitFrontmatter(lines)
	return Document{Frontmatter: fm, Body: lines[bodyIdx:]}
}

// Join reassembles the document into file content. For any parsed document
// this reproduces the normalized input exactly.
func (d Document) Join() string {
	var b strings.Builder
	for _, ln := range d.Frontmatter {
		b.WriteString(ln)
	}
	for _, ln := range d.Body {
		b.WriteString(ln)
	}
	return b.String()
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

package notes

import (
	"regexp"
	"strings"
)

// anyHeaderRe matches a Markdown header of any level 1-6. It is applied to
// lines with their terminator attached, so a bare "###" line also matches
// and closes a section.
var anyHeaderRe = regexp.MustCompile(`^\s*#{1,6}\s+`)

func sectionHeaderRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*#{1,6}\s+` + regexp.QuoteMeta(name) + `\s*$`)
}

// AppendResult reports what AppendToday did to the body.
type AppendResult struct {
	Body         []string
	DateStr      string
	CreatedEntry bool
	Appended     bool
}

// AppendToday inserts content into the entry headed by token, creating that
// entry when absent. The input body is not modified.
//
// When the entry is absent a new block (header, blank line, optional
// "## section" plus blank line, content) goes immediately before the first
// existing date header, or at the end of the body when there is none. When
// the entry exists and no section is named, content lands at the entry's
// end; with a section named, inside that section's extent when a level 1-6
// header with the same trimmed text exists (case-insensitive), otherwise
// under a freshly appended "## section" header at the entry's end. A single
// blank line is spliced in front of inserted content whenever the preceding
// line is non-blank, keeping exactly one blank line between blocks.
func AppendToday(body []string, token, section, content string) AppendResult {
	var dateIdx []int
	todayStart := -1
	for i, ln := range body {
		t, _, ok := ParseDateHeader(ln)
		if !ok {
			continue
		}
		dateIdx = append(dateIdx, i)
		if todayStart < 0 && t == token {
			todayStart = i
		}
	}

	contentBlock := ensureNewline(content)

	if todayStart < 0 {
		block := []string{token + "\n", "\n"}
		if section != "" {
			block = append(block, "## "+section+"\n", "\n")
		}
		block = append(block, contentBlock)
		insertAt := len(body)
		if len(dateIdx) > 0 {
			insertAt = dateIdx[0]
		}
		return AppendResult{
			Body:         splice(body, insertAt, block),
			DateStr:      token,
			CreatedEntry: true,
		}
	}

	entryEnd := len(body)
	for _, j := range dateIdx {
		if j > todayStart {
			entryEnd = j
			break
		}
	}

	if section == "" {
		insertAt := entryEnd
		var block []string
		if !blank(body[insertAt-1]) {
			block = append(block, "\n")
		}
		block = append(block, contentBlock)
		return AppendResult{Body: splice(body, insertAt, block), DateStr: token, Appended: true}
	}

	secStart := -1
	secRe := sectionHeaderRe(section)
	for i := todayStart + 1; i < entryEnd; i++ {
		if secRe.MatchString(strings.TrimRight(body[i], "\n")) {
			secStart = i
			break
		}
	}

	if secStart < 0 {
		insertAt := entryEnd
		var block []string
		if insertAt > todayStart+1 && !blank(body[insertAt-1]) {
			block = append(block, "\n")
		}
		block = append(block, "## "+section+"\n", "\n", contentBlock)
		return AppendResult{Body: splice(body, insertAt, block), DateStr: token, Appended: true}
	}

	secEnd := entryEnd
	for i := secStart + 1; i < entryEnd; i++ {
		if anyHeaderRe.MatchString(body[i]) {
			secEnd = i
			break
		}
	}
	insertAt := secEnd
	var block []string
	if insertAt > secStart+1 && !blank(body[insertAt-1]) {
		block = append(block, "\n")
	}
	block = append(block, contentBlock)
	return AppendResult{Body: splice(body, insertAt, block), DateStr: token, Appended: true}
}

func blank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func splice(lines []string, at int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return out
}

package notes

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date headers are M/D/YY with one or two digit month and day, a two digit
// year, and an optional trailing colon, alone on their line.
var dateHeaderRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}):?$`)

// ParseDateHeader reports whether line is a dated-entry header. On a match
// it returns the header token (trimmed, trailing colon removed) and the
// calendar date with year 2000+YY. Header-shaped lines that do not name a
// real calendar date (month 13, day 40) do not match; the scanner and the
// append engine both rely on this single rule.
func ParseDateHeader(line string) (string, time.Time, bool) {
	s := strings.TrimSpace(line)
	m := dateHeaderRe.FindStringSubmatch(s)
	if m == nil {
		return "", time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yy, _ := strconv.Atoi(m[3])
	year := 2000 + yy
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range fields instead of failing, so a
	// round-trip mismatch marks an invalid calendar date.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return "", time.Time{}, false
	}
	return strings.TrimSuffix(s, ":"), d, true
}

// TodayToken formats now as an entry header token: unpadded month and day,
// zero-padded two digit year (e.g. 11/4/25).
func TodayToken(now time.Time) string {
	return fmt.Sprintf("%d/%d/%02d", int(now.Month()), now.Day(), now.Year()%100)
}

// Entry is one date-headed block of a note body: the header line as written
// (terminator preserved) and the content lines strictly between it and the
// next date header or end of body.
type Entry struct {
	Date    time.Time
	Header  string
	Content []string
}

// DateStr returns the header token as written in the file, without
// surrounding whitespace or the trailing colon.
func (e Entry) DateStr() string {
	return strings.TrimSuffix(strings.TrimSpace(e.Header), ":")
}

// Text joins the content lines and trims trailing newlines.
func (e Entry) Text() string {
	return strings.TrimRight(strings.Join(e.Content, ""), "\n")
}

// Entries scans body lines into dated entries, in file order. The sequence
// is lazy and restartable: ranging over it again re-scans the same lines.
// Lines before the first valid date header belong to no entry and are
// skipped; a header-shaped line with an invalid calendar date is ordinary
// content of whatever entry is open.
func Entries(body []string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		var (
			open    bool
			date    time.Time
			header  string
			content []string
		)
		for _, line := range body {
			if _, d, ok := ParseDateHeader(line); ok {
				if open && !yield(Entry{Date: date, Header: header, Content: content}) {
					return
				}
				open = true
				date = d
				header = ensureNewline(line)
				content = nil
				continue
			}
			if open {
				content = append(content, ensureNewline(line))
			}
		}
		if open {
			yield(Entry{Date: date, Header: header, Content: content})
		}
	}
}

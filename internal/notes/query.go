package notes

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileSource is the slice of vault storage the query needs: dated-notes
// file discovery and reads. Paths are vault-relative.
type FileSource interface {
	ListNotes() ([]string, error)
	Read(rel string) ([]byte, error)
}

// QueryResult is one entry flattened for output: vault-relative file path,
// ISO date, the header token as written, and the content joined with
// trailing newlines trimmed.
type QueryResult struct {
	File    string `json:"file"`
	Date    string `json:"date"`
	DateStr string `json:"date_str"`
	Content string `json:"content"`
}

var rangeDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)

// ErrDateFormat is returned for range bounds that are not valid MM/DD/YY
// dates.
var ErrDateFormat = errors.New("dates must be in MM/DD/YY format")

// ParseRangeDate parses a MM/DD/YY range bound (no colon, month and day may
// be one digit) into a UTC calendar date with year 2000+YY.
func ParseRangeDate(s string) (time.Time, error) {
	m := rangeDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, ErrDateFormat
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yy, _ := strconv.Atoi(m[3])
	year := 2000 + yy
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, ErrDateFormat
	}
	return d, nil
}

// FindInRange scans every dated-notes file in src and collects entries whose
// date falls within [start, end] inclusive. Reversed bounds are swapped
// before filtering. Files that cannot be read are skipped so one bad file
// does not abort the query. Results are sorted by date descending, then by
// file path ascending; entries from the same file keep their file order.
func FindInRange(src FileSource, start, end time.Time) ([]QueryResult, error) {
	if end.Before(start) {
		start, end = end, start
	}
	files, err := src.ListNotes()
	if err != nil {
		return nil, err
	}
	var results []QueryResult
	for _, rel := range files {
		raw, err := src.Read(rel)
		if err != nil {
			continue
		}
		doc := ParseDocument(string(raw))
		for e := range Entries(doc.Body) {
			if e.Date.Before(start) || e.Date.After(end) {
				continue
			}
			results = append(results, QueryResult{
				File:    rel,
				Date:    e.Date.Format("2006-01-02"),
				DateStr: e.DateStr(),
				Content: e.Text(),
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Date != results[j].Date {
			return results[i].Date > results[j].Date
		}
		return results[i].File < results[j].File
	})
	return results, nil
}

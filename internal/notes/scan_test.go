package notes

import (
	"testing"
	"time"
)

func TestParseDateHeader_Valid(t *testing.T) {
	token, d, ok := ParseDateHeader("6/1/24\n")
	if !ok {
		t.Fatal("expected a date header match")
	}
	if token != "6/1/24" {
		t.Errorf("token = %q, want %q", token, "6/1/24")
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("date = %v, want %v", d, want)
	}
}

func TestParseDateHeader_ColonAndWhitespace(t *testing.T) {
	token, _, ok := ParseDateHeader("  11/4/25:  \n")
	if !ok {
		t.Fatal("expected a date header match")
	}
	if token != "11/4/25" {
		t.Errorf("token = %q, want %q", token, "11/4/25")
	}
}

func TestParseDateHeader_InvalidCalendarDate(t *testing.T) {
	if _, _, ok := ParseDateHeader("13/40/24\n"); ok {
		t.Error("13/40/24 must not be a date header")
	}
	if _, _, ok := ParseDateHeader("2/30/24\n"); ok {
		t.Error("2/30/24 must not be a date header")
	}
}

func TestParseDateHeader_Rejections(t *testing.T) {
	for _, line := range []string{
		"6/1/2024\n",     // four digit year
		"6/1/24 more\n",  // trailing text
		"was 6/1/24\n",   // leading text
		"6/1/24::\n",     // double colon
		"6-1-24\n",
	} {
		if _, _, ok := ParseDateHeader(line); ok {
			t.Errorf("%q must not be a date header", line)
		}
	}
}

func TestTodayToken_UnpaddedMonthDay(t *testing.T) {
	got := TodayToken(time.Date(2025, time.November, 4, 15, 30, 0, 0, time.UTC))
	if got != "11/4/25" {
		t.Errorf("token = %q, want %q", got, "11/4/25")
	}
	got = TodayToken(time.Date(2206, time.January, 9, 0, 0, 0, 0, time.UTC))
	if got != "1/9/06" {
		t.Errorf("token = %q, want %q", got, "1/9/06")
	}
}

func TestEntries_SegmentsInFileOrder(t *testing.T) {
	body := Lines("preamble outside any entry\n\n6/2/24\n\nsecond day\n\n6/1/24:\n\nfirst day\nmore\n")
	var got []Entry
	for e := range Entries(body) {
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got))
	}
	if got[0].DateStr() != "6/2/24" || got[1].DateStr() != "6/1/24" {
		t.Errorf("entry order = %q, %q", got[0].DateStr(), got[1].DateStr())
	}
	// Content keeps interior blank lines; only trailing newlines are trimmed.
	if got[0].Text() != "\nsecond day" {
		t.Errorf("first entry text = %q", got[0].Text())
	}
	if got[1].Text() != "\nfirst day\nmore" {
		t.Errorf("second entry text = %q", got[1].Text())
	}
}

func TestEntries_InvalidHeaderShapedLineIsContent(t *testing.T) {
	body := Lines("6/1/24\n13/40/24\nreal content\n")
	var got []Entry
	for e := range Entries(body) {
		got = append(got, e)
	}
	if len(got) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(got))
	}
	if got[0].Text() != "13/40/24\nreal content" {
		t.Errorf("text = %q", got[0].Text())
	}
}

func TestEntries_ContentBeforeFirstHeaderDropped(t *testing.T) {
	body := Lines("13/40/24\nloose text\n6/1/24\nok\n")
	var got []Entry
	for e := range Entries(body) {
		got = append(got, e)
	}
	if len(got) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(got))
	}
	if got[0].DateStr() != "6/1/24" || got[0].Text() != "ok" {
		t.Errorf("entry = %q / %q", got[0].DateStr(), got[0].Text())
	}
}

func TestEntries_Restartable(t *testing.T) {
	body := Lines("6/1/24\na\n6/2/24\nb\n")
	seq := Entries(body)
	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != 2 || second != 2 {
		t.Errorf("scan counts = %d, %d, want 2, 2", first, second)
	}
}

func TestEntries_StopsEarly(t *testing.T) {
	body := Lines("6/1/24\na\n6/2/24\nb\n6/3/24\nc\n")
	count := 0
	for range Entries(body) {
		count++
		if count == 1 {
			break
		}
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestEntries_HeaderKeepsTerminatorAndColon(t *testing.T) {
	body := Lines("6/1/24:\ntext\n")
	for e := range Entries(body) {
		if e.Header != "6/1/24:\n" {
			t.Errorf("header = %q, want %q", e.Header, "6/1/24:\n")
		}
	}
}

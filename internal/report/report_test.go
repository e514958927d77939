package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/szaher/finsight/internal/engine"
	"github.com/szaher/finsight/internal/session"
)

func sampleRecord() *session.Record {
	return &session.Record{
		ID:    "01JSAMPLE0000000000000000",
		Query: "What moved AAPL today?",
		Answer: "AAPL rose 3% after earnings beat expectations.\n\n" +
			"## Detail\n\n" +
			"Revenue came in at $94B, see [the press release](https://example.com/pr) " +
			"and https://example.com/filing for details.",
		Terminal:  engine.TerminalDone,
		StartedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 8, 28, 9, 1, 0, 0, time.UTC),
		Turns:     3,
	}
}

func TestExtractCitations(t *testing.T) {
	text := "See [Q3 report](https://example.com/q3) and https://example.com/raw. " +
		"Also [again](https://example.com/q3)."
	got := ExtractCitations(text)
	if len(got) != 2 {
		t.Fatalf("citations = %+v, want 2 (duplicates collapsed)", got)
	}
	if got[0].Title != "Q3 report" || got[0].URL != "https://example.com/q3" {
		t.Errorf("first citation = %+v", got[0])
	}
	if got[1].URL != "https://example.com/raw" {
		t.Errorf("second citation = %+v (trailing punctuation must be trimmed)", got[1])
	}
}

func TestExtractCitationsNone(t *testing.T) {
	if got := ExtractCitations("no links here"); len(got) != 0 {
		t.Errorf("citations = %+v, want none", got)
	}
}

func TestFromRecord(t *testing.T) {
	r := FromRecord(sampleRecord())
	if r.Query != "What moved AAPL today?" || r.Turns != 3 {
		t.Errorf("report = %+v", r)
	}
	if len(r.Citations) != 2 {
		t.Errorf("citations = %+v, want 2", r.Citations)
	}
}

func TestWriteHTML(t *testing.T) {
	r := FromRecord(sampleRecord())
	var buf bytes.Buffer
	if err := r.WriteHTML(&buf); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<h2>Detail</h2>",
		`href="https://example.com/pr"`,
		"<h2>Sources</h2>",
		"Session 01JSAMPLE0000000000000000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestSplitHeading(t *testing.T) {
	tests := []struct {
		block string
		level uint
		text  string
		ok    bool
	}{
		{"## Detail", 2, "Detail", true},
		{"# Top", 1, "Top", true},
		{"####### too deep", 0, "", false},
		{"#nospace", 0, "", false},
		{"plain text", 0, "", false},
		{"## multi\nline", 0, "", false},
	}
	for _, tc := range tests {
		level, text, ok := splitHeading(tc.block)
		if level != tc.level || text != tc.text || ok != tc.ok {
			t.Errorf("splitHeading(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tc.block, level, text, ok, tc.level, tc.text, tc.ok)
		}
	}
}

func TestStripInlineMarkdown(t *testing.T) {
	got := stripInlineMarkdown("**bold** and [link](https://example.com/x) plus `code`")
	want := "bold and link (https://example.com/x) plus code"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Package report renders finished sessions as shareable documents.
package report

import (
	"regexp"
	"strings"
	"time"

	"github.com/szaher/finsight/internal/session"
)

// Citation is a source URL referenced by the answer.
type Citation struct {
	Title string
	URL   string
}

// Report is a render-ready view of one session.
type Report struct {
	ID          string
	Query       string
	Answer      string
	Terminal    string
	GeneratedAt time.Time
	Turns       int
	Citations   []Citation
}

// FromRecord builds a Report from a stored session.
func FromRecord(rec *session.Record) *Report {
	return &Report{
		ID:          rec.ID,
		Query:       rec.Query,
		Answer:      rec.Answer,
		Terminal:    string(rec.Terminal),
		GeneratedAt: rec.EndedAt,
		Turns:       rec.Turns,
		Citations:   ExtractCitations(rec.Answer),
	}
}

var (
	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	bareURL      = regexp.MustCompile(`https?://[^\s)\]>"']+`)
)

// ExtractCitations pulls source URLs out of the answer text. Markdown links
// keep their link text as the title; bare URLs title themselves. Duplicate
// URLs are collapsed, first occurrence wins.
func ExtractCitations(text string) []Citation {
	seen := make(map[string]bool)
	var citations []Citation

	for _, m := range markdownLink.FindAllStringSubmatch(text, -1) {
		url := strings.TrimRight(m[2], ".,;")
		if seen[url] {
			continue
		}
		seen[url] = true
		citations = append(citations, Citation{Title: m[1], URL: url})
	}

	// Strip markdown links so their URLs are not matched twice.
	stripped := markdownLink.ReplaceAllString(text, "")
	for _, raw := range bareURL.FindAllString(stripped, -1) {
		url := strings.TrimRight(raw, ".,;")
		if seen[url] {
			continue
		}
		seen[url] = true
		citations = append(citations, Citation{Title: url, URL: url})
	}
	return citations
}

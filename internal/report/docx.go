package report

import (
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
)

// WriteDOCX renders the report as a Word document at path. Markdown
// structure is flattened: headings become styled headings, everything else
// becomes paragraphs.
func (r *Report) WriteDOCX(path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}

	if _, err := doc.AddHeading(r.Query, 0); err != nil {
		return fmt.Errorf("docx heading: %w", err)
	}

	for _, block := range strings.Split(r.Answer, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if level, text, ok := splitHeading(block); ok {
			if _, err := doc.AddHeading(text, level); err != nil {
				return fmt.Errorf("docx heading: %w", err)
			}
			continue
		}
		doc.AddParagraph(stripInlineMarkdown(block))
	}

	if len(r.Citations) > 0 {
		if _, err := doc.AddHeading("Sources", 1); err != nil {
			return fmt.Errorf("docx heading: %w", err)
		}
		for i, c := range r.Citations {
			doc.AddParagraph(fmt.Sprintf("%d. %s - %s", i+1, c.Title, c.URL))
		}
	}

	doc.AddParagraph(fmt.Sprintf("Session %s, %d turns, generated %s",
		r.ID, r.Turns, r.GeneratedAt.Format("2006-01-02 15:04 MST")))

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

// splitHeading recognizes a single-line "## Heading" block.
func splitHeading(block string) (level uint, text string, ok bool) {
	if strings.ContainsRune(block, '\n') || !strings.HasPrefix(block, "#") {
		return 0, "", false
	}
	n := 0
	for n < len(block) && block[n] == '#' {
		n++
	}
	if n > 6 || n >= len(block) || block[n] != ' ' {
		return 0, "", false
	}
	return uint(n), strings.TrimSpace(block[n:]), true
}

// stripInlineMarkdown removes emphasis and link syntax that has no DOCX
// rendering here; link text keeps its URL in parentheses.
func stripInlineMarkdown(s string) string {
	s = markdownLink.ReplaceAllString(s, "$1 ($2)")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

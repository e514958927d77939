package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
)

var htmlShell = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Query}}</title>
<style>
body { font-family: sans-serif; font-size: 15px; line-height: 1.6; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
h1 { font-size: 1.4rem; }
footer { margin-top: 2rem; border-top: 1px solid #ccc; font-size: 0.85rem; color: #555; }
img { max-width: 100%; }
</style>
</head>
<body>
<h1>{{.Query}}</h1>
{{.Body}}
{{if .Citations}}<h2>Sources</h2>
<ol>
{{range .Citations}}<li><a href="{{.URL}}">{{.Title}}</a></li>
{{end}}</ol>
{{end}}<footer>Session {{.ID}} &middot; {{.Turns}} turns &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</footer>
</body>
</html>
`))

// WriteHTML renders the answer Markdown to a standalone HTML page with
// citations appended as a source list.
func (r *Report) WriteHTML(w io.Writer) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(r.Answer), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}

	data := struct {
		*Report
		Body template.HTML
	}{Report: r, Body: template.HTML(body.String())}

	if err := htmlShell.Execute(w, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// Package render turns processed records into HTML, terminal and Telegram output.
package render

import (
	"bytes"
	"html/template"
	"io"

	"github.com/deusflow/ainews/internal/news"
)

const CSS = `.article-card { border: 1px solid #ddd; padding: 15px; margin-bottom: 20px; border-radius: 8px; }
.article-card h3 { margin-top: 0; }
.article-image { max-width: 100%; height: auto; margin-top: 10px; border-radius: 5px; }`

var templates = template.Must(template.New("render").Parse(`
{{define "cards"}}{{range .}}
<div class="article-card" data-status="{{.Status}}">
    <h3><a href="{{.URL}}" target="_blank">{{.Title}}</a></h3>
    <p><strong>Source:</strong> {{.Source}}</p>
    <p><strong>Summary:</strong> {{.Summary}}</p>
    {{- if .ImageURL}}
    <img src="{{.ImageURL}}" alt="Article image" class="article-image">
    {{- end}}
</div>
{{end}}{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AI Global News Aggregator</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 0 auto; padding: 20px; }
.message { padding: 15px; background: #f6f6f6; border-radius: 8px; }
{{.CSS}}
</style>
</head>
<body>
<h1>AI Global News Aggregator</h1>
<p>Get AI-summarized news headlines from various categories in multiple languages.</p>
<form method="get" action="/">
    <label>Select News Category
    <select name="category">
        <option value=""></option>
        {{- range .Categories}}
        <option value="{{.}}"{{if eq . $.Category}} selected{{end}}>{{.}}</option>
        {{- end}}
    </select></label>
    <label>Select Language
    <select name="language">
        {{- range .Languages}}
        <option value="{{.}}"{{if eq . $.Language}} selected{{end}}>{{.}}</option>
        {{- end}}
    </select></label>
    <button type="submit">Get News Summaries</button>
</form>
<div id="output">
{{- if .Message}}
<p class="message">{{.Message}}</p>
{{- end}}
{{template "cards" .Records}}
</div>
<p>This tool uses AI to fetch, summarize, and translate current news articles.</p>
</body>
</html>
{{end}}`))

// Page is the data of the UI page.
type Page struct {
	Categories []string
	Languages  []string
	Category   string
	Language   string
	Message    string
	Records    []news.Record
}

func (p Page) CSS() template.CSS { return template.CSS(CSS) }

// HTML renders records as article cards. All values are escaped.
func HTML(records []news.Record) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "cards", records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WritePage writes the full UI page.
func WritePage(w io.Writer, p Page) error {
	if p.Categories == nil {
		p.Categories = news.Categories
	}
	if p.Languages == nil {
		p.Languages = news.Languages
	}
	if p.Language == "" {
		p.Language = news.Languages[0]
	}
	return templates.ExecuteTemplate(w, "page", p)
}

// Package web embeds the attendance page templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

// Templates parses the page and the records fragment. Each template is
// named after its file, e.g. "records.html".
func Templates() (*template.Template, error) {
	return template.New("attendance").ParseFS(templates, "templates/*.html")
}

package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Load parses every embedded page and email template.
func Load() (*template.Template, error) {
	return template.ParseFS(files, "*.html")
}

func MustLoad() *template.Template {
	return template.Must(Load())
}

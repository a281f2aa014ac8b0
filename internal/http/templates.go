package http

import (
	"embed"
	"html/template"

	"github.com/mrlokans/bookworm/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"subtract": func(a, b int) int {
		return a - b
	},
	"add": func(a, b int) int {
		return a + b
	},
	"illustration": func(g entities.Genre) string {
		return "/static/genres/" + g.Illustration() + ".svg"
	},
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

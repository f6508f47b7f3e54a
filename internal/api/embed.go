package api

import (
	"embed"
	"html/template"
)

//go:embed template/*.html
var templateFs embed.FS

//go:embed static
var staticFs embed.FS

func MustParseTemplates(assets *HashFS) *template.Template {
	funcMap := template.FuncMap{
		"asset": func(name string) string {
			return "/static/" + assets.FormatWithHash(name)
		},
		// layout styles are declared in code, never taken from requests
		"css": func(s string) template.CSS {
			return template.CSS(s)
		},
	}

	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFs, "template/*.html"))
}

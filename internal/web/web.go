// Package web holds the embedded HTML views and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"avg": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f", *v)
	},
	"intOrDash": func(v *int) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *v)
	},
}

// Templates parses every view. Page templates are addressed by file name, e.g. "dashboard.tmpl".
func Templates() (*template.Template, error) {
	tmpls, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpls, nil
}

// Static serves the embedded assets mounted at /static
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

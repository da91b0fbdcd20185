// Package templates renders the HTML fragments patched into the viewer
// over Datastar SSE.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"sync"
)

//go:embed fragments/*.html
var fragments embed.FS

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	// latlng prints a [lon, lat] position the way people read it
	"latlng": func(p [2]float64) string {
		return fmt.Sprintf("%.4f, %.4f", p[1], p[0])
	},
	// safeCSS lets a validated #rrggbb colour through as a style value
	"safeCSS": func(s string) template.CSS {
		return template.CSS(s)
	},
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer from the *.html files at the root of fsys.
func New(fsys fs.FS) (*Renderer, error) {
	tmpl, err := parse(fsys)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// Default creates a renderer over the embedded fragments.
func Default() (*Renderer, error) {
	return New(embedded())
}

func embedded() fs.FS {
	sub, err := fs.Sub(fragments, "fragments")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

func parse(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// Reload re-parses the embedded fragments and layers the *.html files of
// fsys on top, so a directory only needs the fragments it changes.
func (r *Renderer) Reload(fsys fs.FS) error {
	tmpl, err := parse(embedded())
	if err != nil {
		return err
	}
	matches, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		if tmpl, err = tmpl.ParseFS(fsys, matches...); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}

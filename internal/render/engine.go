// Package render renders serverless pages from html/template files.
//
// An Engine is configured with named routes. Each route owns a permalink pattern
// and a page template; all pages share the layouts found under templates/layouts.
// Rendering a route for a request path yields a Page carrying the HTML and the
// data the template saw, so callers can post-process the output with values that
// were only known after rendering (for example path parameters).
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
)

// LayoutGlob is where shared layouts live inside the template filesystem.
const LayoutGlob = "templates/layouts/*.html"

// layoutName is the template every page executes; layouts must define it.
const layoutName = "layout"

// Request is the per-invocation input to a render.
type Request struct {
	Path  string
	Query map[string]string
}

// Data is the page data exposed to templates as .Data.
type Data struct {
	Route  string
	Path   map[string]string
	Query  map[string]string
	Global map[string]any
}

// Page is one rendered output.
type Page struct {
	URL     string
	Content string
	Data    Data
}

// Option customises an Engine.
type Option func(*Engine)

// WithGlobalData exposes values to every template as .Data.Global.
func WithGlobalData(global map[string]any) Option {
	return func(e *Engine) {
		e.global = global
	}
}

// Engine renders the configured routes.
type Engine struct {
	routes    []compiledRoute
	byName    map[string]int
	templates map[string]*template.Template
	global    map[string]any
}

// New parses the shared layouts and one page template per route from fsys.
func New(fsys fs.FS, routes []Route, opts ...Option) (*Engine, error) {
	if fsys == nil {
		return nil, fmt.Errorf("template filesystem is required")
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("at least one route is required")
	}

	base, err := template.New("").ParseFS(fsys, LayoutGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	if base.Lookup(layoutName) == nil {
		return nil, fmt.Errorf("layouts must define %q", layoutName)
	}

	e := &Engine{
		byName:    make(map[string]int, len(routes)),
		templates: make(map[string]*template.Template, len(routes)),
		global:    map[string]any{},
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, r := range routes {
		compiled, err := compileRoute(r)
		if err != nil {
			return nil, err
		}
		if _, dup := e.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate route %q", r.Name)
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %q: %w", r.Name, err)
		}
		tmpl, err := clone.ParseFS(fsys, path.Join("templates", r.Template))
		if err != nil {
			return nil, fmt.Errorf("parse template for %q: %w", r.Name, err)
		}
		e.byName[r.Name] = len(e.routes)
		e.routes = append(e.routes, compiled)
		e.templates[r.Name] = tmpl
	}
	return e, nil
}

// Render executes the named route for req.
//
// A path that does not fit the route's pattern fails with a 404 *Error; any other
// failure is a 500 *Error.
func (e *Engine) Render(ctx context.Context, name string, req Request) (Page, error) {
	idx, ok := e.byName[name]
	if !ok {
		return Page{}, newError(http.StatusInternalServerError, fmt.Sprintf("unknown serverless route %q", name), nil)
	}
	route := e.routes[idx]

	params, ok := route.match(req.Path)
	if !ok {
		return Page{}, newError(http.StatusNotFound, fmt.Sprintf("no matching serverless route for path %q", req.Path), nil)
	}

	if err := ctx.Err(); err != nil {
		return Page{}, newError(http.StatusInternalServerError, "render canceled", err)
	}

	query := req.Query
	if query == nil {
		query = map[string]string{}
	}
	data := Data{
		Route:  name,
		Path:   params,
		Query:  query,
		Global: e.global,
	}

	var buf bytes.Buffer
	if err := e.templates[name].ExecuteTemplate(&buf, layoutName, struct{ Data Data }{Data: data}); err != nil {
		return Page{}, newError(http.StatusInternalServerError, fmt.Sprintf("render %q", name), err)
	}

	return Page{
		URL:     req.Path,
		Content: buf.String(),
		Data:    data,
	}, nil
}

// IsServerlessURL reports whether any configured route matches p.
func (e *Engine) IsServerlessURL(p string) bool {
	for _, r := range e.routes {
		if _, ok := r.match(p); ok {
			return true
		}
	}
	return false
}

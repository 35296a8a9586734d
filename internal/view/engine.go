package view

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrTemplateNotFound indicates no file for the requested template name
// exists anywhere on the search path. Callers treat this as a fatal
// rendering error, never as something to paper over.
var ErrTemplateNotFound = errors.New("template not found")

// Engine renders HTML templates resolved through a search path of
// directories, falling back to an embedded template set. Templates are
// parsed per render so edits on disk take effect without a restart.
type Engine struct {
	searchPath []string
	fallback   fs.FS
	funcs      template.FuncMap
}

// NewEngine constructs an Engine. Directories are consulted in order;
// fallback (may be nil) is consulted last.
func NewEngine(fallback fs.FS, searchPath ...string) *Engine {
	return &Engine{
		searchPath: searchPath,
		fallback:   fallback,
		funcs: template.FuncMap{
			"join": func(items []string, sep string) string {
				out := ""
				for i, item := range items {
					if i > 0 {
						out += sep
					}
					out += item
				}
				return out
			},
		},
	}
}

// Render executes the named template against model. It returns
// ErrTemplateNotFound (wrapped with the name and search path) when the
// template cannot be located.
func (e *Engine) Render(w io.Writer, name string, model any) error {
	src, err := e.lookup(name)
	if err != nil {
		return err
	}
	tpl, err := template.New(name).Funcs(e.funcs).Parse(string(src))
	if err != nil {
		return fmt.Errorf("view: parse %s: %w", name, err)
	}
	return tpl.Execute(w, model)
}

// Lookup reports whether the named template can be resolved.
func (e *Engine) Lookup(name string) bool {
	_, err := e.lookup(name)
	return err == nil
}

func (e *Engine) lookup(name string) ([]byte, error) {
	for _, dir := range e.searchPath {
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return src, nil
		}
	}
	if e.fallback != nil {
		src, err := fs.ReadFile(e.fallback, "templates/"+name)
		if err == nil {
			return src, nil
		}
	}
	return nil, fmt.Errorf("view: %w: %s (search path %v)", ErrTemplateNotFound, name, e.searchPath)
}

// Package views renders the board's HTML pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title       string
	CSRF        string
	CurrentUser *models.User
	Unread      int64
	Flash       string
	Errors      map[string]string
	Form        any
	Data        any
}

// Renderer implements echo.Renderer over one template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout. Template functions
// answer authorization questions through policy.
func New(policy *services.Policy) (*Renderer, error) {
	funcs := template.FuncMap{
		"can": func(actor *models.User, action string, target any) bool {
			return policy.Allowed(actor, services.Action(action), target)
		},
		"isAdmin":      policy.IsAdmin,
		"isSuperAdmin": policy.IsSuperAdmin,
		"departments":  func() []string { return models.Departments },
		"formatTime": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 15:04")
		},
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

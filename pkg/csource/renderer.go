// Package csource renders the fixed C scaffolding that frames every
// generated type: the struct declaration block, the encode/decode
// prototypes, the cursor-based inner definitions and the public
// wrappers. The variable parts (member lists, statement bodies) are
// produced elsewhere and injected as pre-rendered text.
package csource

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Template names understood by the bundled renderer.
const (
	TemplateTypeDeclaration = "type_declaration"
	TemplatePrototypes      = "prototypes"
	TemplateDefinitionInner = "definition_inner"
	TemplateDefinition      = "definition"
)

// Option configures the renderer before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// Renderer executes the scaffolding templates against a pongo2 set.
type Renderer struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	extension string
}

// New constructs a Renderer over the embedded bundle unless options
// redirect it elsewhere.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		templates: TemplatesFS(),
		extension: ".tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		return nil, errors.New("csource: template fs is required")
	}

	return &Renderer{
		set:       pongo2.NewSet("csource", pongo2.NewFSLoader(cfg.templates)),
		templates: make(map[string]*pongo2.Template),
		extension: cfg.extension,
	}, nil
}

// Render executes the named template with the supplied data.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	if r == nil || r.set == nil {
		return "", errors.New("csource: renderer is nil")
	}

	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}

	out, err := tmpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("csource: execute template %q: %w", name, err)
	}
	return out, nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	path := name
	if !strings.HasSuffix(path, r.extension) {
		path += r.extension
	}

	r.mu.RLock()
	tmpl, ok := r.templates[path]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := r.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("csource: load template %q: %w", path, err)
	}
	r.templates[path] = tmpl
	return tmpl, nil
}

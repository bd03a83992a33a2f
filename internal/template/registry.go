package template

import (
	"errors"
	"fmt"
	"sync"
)

// ErrTemplateNotFound is returned when a template name cannot be resolved
// and no default template is registered to fall back to.
var ErrTemplateNotFound = errors.New("template not found")

// DefaultName is the slot every unknown template name falls back to.
const DefaultName = "default"

// Registry resolves template slots by name. Parsed templates are cached, so
// repeated renders never re-scan the source.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates a registry preloaded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*Template)}
	for name, source := range builtinTemplates {
		r.templates[name] = MustParse(source)
	}
	return r
}

// Register parses and stores a template under the given name, replacing any
// existing entry.
func (r *Registry) Register(name, source string) error {
	tmpl, err := Parse(source)
	if err != nil {
		return fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	r.mu.Lock()
	r.templates[name] = tmpl
	r.mu.Unlock()
	return nil
}

// Get resolves a template by name, falling back to the default slot for
// unknown names. It fails only when the fallback itself is missing.
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	if tmpl, ok := r.templates[DefaultName]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// Render resolves the named template and evaluates it against data.
func (r *Registry) Render(name string, data map[string]any) (string, error) {
	tmpl, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(data), nil
}

// Names returns the registered template names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

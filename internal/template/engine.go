// engine.go — Template catalogs, registration, validation, and interchange.
// Rendering itself lives in render.go.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/event"
)

// Engine holds two catalogs: built-ins seeded at construction and
// user-registered templates. On id collision the user catalog wins.
// Catalogs are read-mostly; registration and removal invalidate explicitly.
type Engine struct {
	mu      sync.RWMutex
	builtin map[string]Template
	user    map[string]Template
}

// NewEngine returns an Engine seeded with the built-in templates.
func NewEngine() *Engine {
	e := &Engine{
		builtin: make(map[string]Template),
		user:    make(map[string]Template),
	}
	for _, t := range builtinTemplates {
		e.builtin[t.ID] = t
	}
	return e
}

// Register adds or replaces a user template. A template without an id is
// assigned one.
func (e *Engine) Register(t Template) Template {
	if t.ID == "" {
		t.ID = "tpl_" + uuid.NewString()
	}
	e.mu.Lock()
	e.user[t.ID] = t
	e.mu.Unlock()
	return t
}

// Unregister removes a user template; built-ins cannot be removed, only
// shadowed. Removing an id that shadows a built-in re-exposes the built-in.
func (e *Engine) Unregister(id string) {
	e.mu.Lock()
	delete(e.user, id)
	e.mu.Unlock()
}

// Get resolves a template id, preferring the user catalog.
func (e *Engine) Get(id string) (Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.user[id]; ok {
		return t, nil
	}
	if t, ok := e.builtin[id]; ok {
		return t, nil
	}
	return Template{}, &event.TemplateNotFoundError{ID: id}
}

// List returns every visible template, user registrations shadowing built-ins.
func (e *Engine) List() []Template {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Template, 0, len(e.builtin)+len(e.user))
	for id, t := range e.builtin {
		if _, shadowed := e.user[id]; !shadowed {
			out = append(out, t)
		}
	}
	for _, t := range e.user {
		out = append(out, t)
	}
	return out
}

// ValidateContext checks the context against every declared placeholder and
// returns a TemplateValidationError carrying the complete violation list,
// or nil when the context is valid.
func (e *Engine) ValidateContext(t Template, ctx map[string]any) error {
	var violations []string
	for _, p := range t.Placeholders {
		value, present := resolvePath(ctx, p.Key)
		if !present || value == nil {
			if p.Required {
				violations = append(violations, fmt.Sprintf("required placeholder %q is missing", p.Key))
			}
			continue
		}
		text := fmt.Sprint(value)
		if p.Validation != "" {
			re, err := regexp.Compile(p.Validation)
			if err != nil {
				violations = append(violations, fmt.Sprintf("placeholder %q has an invalid validation pattern: %v", p.Key, err))
			} else if !re.MatchString(text) {
				violations = append(violations, fmt.Sprintf("placeholder %q value %q does not match %q", p.Key, text, p.Validation))
			}
		}
		if len(p.Options) > 0 && !contains(p.Options, text) {
			violations = append(violations, fmt.Sprintf("placeholder %q value %q is not one of the allowed options", p.Key, text))
		}
	}
	if len(violations) > 0 {
		return &event.TemplateValidationError{TemplateID: t.ID, Violations: violations}
	}
	return nil
}

// ExportTemplate serializes a template as indented JSON.
func (e *Engine) ExportTemplate(id string) ([]byte, error) {
	t, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(t, "", "  ")
}

// ImportTemplate parses a serialized template and registers it in the user
// catalog, assigning an id when the payload has none.
func (e *Engine) ImportTemplate(data []byte) (Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("template_import_failed: %w", err)
	}
	if t.Content == "" {
		return Template{}, fmt.Errorf("template_import_failed: template has no content")
	}
	return e.Register(t), nil
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

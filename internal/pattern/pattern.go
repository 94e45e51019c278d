// pattern.go — Mining reusable parameterized patterns from event sequences.
package pattern

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/event"
)

// ParameterDefinition declares one substitutable slot on a pattern template.
type ParameterDefinition struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number", "boolean"
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// EventPattern is one event reduced to its reusable shape. Fields listed in
// Parameterized hold {{name}} slots instead of recorded literals.
type EventPattern struct {
	Type          event.Type     `json:"type"`
	Selector      string         `json:"selector,omitempty"`
	Text          string         `json:"text,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	Parameterized []string       `json:"parameterized,omitempty"`
	Occurrences   int            `json:"occurrences,omitempty"`
}

// Template is a named, instantiable sequence of event patterns.
type Template struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Events      []EventPattern        `json:"events"`
	Parameters  []ParameterDefinition `json:"parameters,omitempty"`
}

// Extractor mines patterns and holds the registered template catalog.
// Safe for concurrent use.
type Extractor struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewExtractor() *Extractor {
	return &Extractor{templates: make(map[string]Template)}
}

// ============================================
// Extraction
// ============================================

// ExtractPatterns converts each event into a pattern unit. With
// autoParameterize set, selector, target text, and the recorded input value
// become {{name}} slots, numbered by event position.
func ExtractPatterns(events []event.RecordedEvent, autoParameterize bool) []EventPattern {
	patterns := make([]EventPattern, 0, len(events))
	for i, e := range events {
		p := EventPattern{
			Type:     e.Type,
			Selector: e.Metadata.Selector,
			Text:     e.Target.Text,
			Data:     cloneData(e.Data),
		}
		if autoParameterize {
			parameterize(&p, i+1)
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// parameterize replaces the pattern's literal fields with named slots.
func parameterize(p *EventPattern, ordinal int) {
	if p.Selector != "" {
		name := fmt.Sprintf("selector_%d", ordinal)
		p.Selector = slot(name)
		p.Parameterized = append(p.Parameterized, name)
	}
	if p.Text != "" {
		name := fmt.Sprintf("text_%d", ordinal)
		p.Text = slot(name)
		p.Parameterized = append(p.Parameterized, name)
	}
	if v, ok := p.Data["value"].(string); ok && v != "" {
		name := fmt.Sprintf("value_%d", ordinal)
		p.Data["value"] = slot(name)
		p.Parameterized = append(p.Parameterized, name)
	}
	if raw, ok := p.Data["url"].(string); ok && raw != "" {
		name := fmt.Sprintf("url_%d", ordinal)
		p.Data["url"] = slot(name)
		p.Parameterized = append(p.Parameterized, name)
	}
}

func slot(name string) string { return "{{" + name + "}}" }

// ExtractCommonPatterns groups structurally equal events (same type and
// selector) across multiple recordings and returns those occurring at least
// minOccurrences times, in first-seen order with occurrence counts attached.
func ExtractCommonPatterns(recordings []event.Recording, minOccurrences int) []EventPattern {
	if minOccurrences < 1 {
		minOccurrences = 1
	}
	type entry struct {
		pattern EventPattern
		count   int
	}
	var order []string
	seen := make(map[string]*entry)

	for _, rec := range recordings {
		for _, e := range rec.Events {
			key := string(e.Type) + "\x00" + e.Metadata.Selector
			if ex, ok := seen[key]; ok {
				ex.count++
				continue
			}
			seen[key] = &entry{
				pattern: EventPattern{
					Type:     e.Type,
					Selector: e.Metadata.Selector,
					Text:     e.Target.Text,
					Data:     cloneData(e.Data),
				},
				count: 1,
			}
			order = append(order, key)
		}
	}

	var out []EventPattern
	for _, key := range order {
		ex := seen[key]
		if ex.count < minOccurrences {
			continue
		}
		p := ex.pattern
		p.Occurrences = ex.count
		out = append(out, p)
	}
	return out
}

// BuildTemplate extracts a template from a recorded sequence, deriving one
// required parameter definition per auto-parameterized slot.
func BuildTemplate(name string, events []event.RecordedEvent, autoParameterize bool) Template {
	patterns := ExtractPatterns(events, autoParameterize)
	t := Template{
		ID:     "ptn_" + uuid.NewString(),
		Name:   name,
		Events: patterns,
	}
	for _, p := range patterns {
		for _, param := range p.Parameterized {
			t.Parameters = append(t.Parameters, ParameterDefinition{
				Name:     param,
				Type:     "string",
				Required: true,
			})
		}
	}
	return t
}

// ============================================
// Catalog
// ============================================

// RegisterTemplate stores a template, assigning an id when absent, and
// returns the id under which it is retrievable.
func (x *Extractor) RegisterTemplate(t Template) string {
	x.mu.Lock()
	defer x.mu.Unlock()
	if t.ID == "" {
		t.ID = "ptn_" + uuid.NewString()
	}
	x.templates[t.ID] = t
	return t.ID
}

// Template returns the registered template for an id.
func (x *Extractor) Template(id string) (Template, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	t, ok := x.templates[id]
	if !ok {
		return Template{}, &event.TemplateNotFoundError{ID: id}
	}
	return t, nil
}

// Templates lists the registered templates sorted by name, then id.
func (x *Extractor) Templates() []Template {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Template, 0, len(x.templates))
	for _, t := range x.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

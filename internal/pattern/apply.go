// apply.go — Re-instantiating a pattern template against new parameter values.
package pattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/event"
)

// ApplyTemplate validates the parameter map against the template's declared
// definitions and substitutes {{name}} slots into selectors, text, and data
// payloads. Validation reports every problem at once: missing required
// parameters, type mismatches, and unknown names are all collected before
// rejecting.
func (x *Extractor) ApplyTemplate(id string, params map[string]any) ([]event.RecordedEvent, error) {
	t, err := x.Template(id)
	if err != nil {
		return nil, err
	}
	if err := validateParams(t, params); err != nil {
		return nil, err
	}

	events := make([]event.RecordedEvent, 0, len(t.Events))
	for i, p := range t.Events {
		e := event.RecordedEvent{
			ID:       "evt_" + uuid.NewString(),
			Sequence: i + 1,
			Type:     p.Type,
			Metadata: event.Metadata{Selector: substituteString(p.Selector, params)},
			Target:   event.TargetDescriptor{Text: substituteString(p.Text, params)},
		}
		if p.Data != nil {
			e.Data = make(map[string]any, len(p.Data))
			for k, v := range p.Data {
				e.Data[k] = substituteValue(v, params)
			}
		}
		events = append(events, e)
	}
	return events, nil
}

func validateParams(t Template, params map[string]any) error {
	declared := make(map[string]ParameterDefinition, len(t.Parameters))
	for _, def := range t.Parameters {
		declared[def.Name] = def
	}

	var missing, mismatched, unknown []string
	for _, def := range t.Parameters {
		v, present := params[def.Name]
		if !present {
			if def.Required {
				missing = append(missing, def.Name)
			}
			continue
		}
		if !typeMatches(def.Type, v) {
			mismatched = append(mismatched, def.Name)
		}
	}
	for name := range params {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(missing) == 0 && len(mismatched) == 0 && len(unknown) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(mismatched)
	sort.Strings(unknown)
	return &event.ParameterValidationError{
		TemplateID: t.ID,
		Missing:    missing,
		Mismatched: mismatched,
		Unknown:    unknown,
	}
}

func typeMatches(declared string, v any) bool {
	switch declared {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		switch v.(type) {
		case int, int64, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	}
	// Undeclared types accept anything.
	return true
}

// substituteValue replaces a value that is exactly one {{name}} slot with the
// typed parameter value, and otherwise substitutes textually.
func substituteValue(v any, params map[string]any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		name := s[2 : len(s)-2]
		if pv, present := params[name]; present {
			return pv
		}
	}
	return substituteString(s, params)
}

func substituteString(s string, params map[string]any) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	for name, v := range params {
		s = strings.ReplaceAll(s, slot(name), fmt.Sprint(v))
	}
	return s
}

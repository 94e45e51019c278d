// pattern_test.go — Tests for pattern mining and template instantiation.
package pattern

import (
	"errors"
	"testing"

	"github.com/flowlens/flowlens/internal/event"
)

func recorded(seq int, typ event.Type, sel string, data map[string]any) event.RecordedEvent {
	return event.RecordedEvent{
		ID:       "evt_seed",
		Sequence: seq,
		Type:     typ,
		Data:     data,
		Metadata: event.Metadata{Selector: sel},
	}
}

func loginEvents() []event.RecordedEvent {
	return []event.RecordedEvent{
		recorded(1, event.TypeInput, "#email", map[string]any{"value": "a@b.com"}),
		recorded(2, event.TypeInput, "#password", map[string]any{"value": "hunter2"}),
		recorded(3, event.TypeClick, "#submit", nil),
	}
}

// ============================================
// Extraction
// ============================================

func TestExtractPatterns_Literal(t *testing.T) {
	t.Parallel()
	patterns := ExtractPatterns(loginEvents(), false)
	if len(patterns) != 3 {
		t.Fatalf("patterns = %d, want 3", len(patterns))
	}
	if patterns[0].Selector != "#email" || patterns[0].Data["value"] != "a@b.com" {
		t.Fatalf("literal fields changed: %+v", patterns[0])
	}
	if len(patterns[0].Parameterized) != 0 {
		t.Fatalf("unexpected parameterization: %v", patterns[0].Parameterized)
	}
}

func TestExtractPatterns_AutoParameterize(t *testing.T) {
	t.Parallel()
	patterns := ExtractPatterns(loginEvents(), true)
	if got, want := patterns[0].Selector, "{{selector_1}}"; got != want {
		t.Fatalf("selector = %q, want %q", got, want)
	}
	if got, want := patterns[0].Data["value"], "{{value_1}}"; got != want {
		t.Fatalf("value = %q, want %q", got, want)
	}
	if got, want := patterns[1].Data["value"], "{{value_2}}"; got != want {
		t.Fatalf("value = %q, want %q", got, want)
	}
	// The click carries no value; only its selector is a slot.
	if got := patterns[2].Parameterized; len(got) != 1 || got[0] != "selector_3" {
		t.Fatalf("parameterized = %v, want [selector_3]", got)
	}
}

func TestExtractPatterns_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	events := loginEvents()
	ExtractPatterns(events, true)
	if events[0].Data["value"] != "a@b.com" {
		t.Fatalf("input mutated: %v", events[0].Data)
	}
}

func TestExtractCommonPatterns(t *testing.T) {
	t.Parallel()
	recA := event.Recording{Name: "a", Events: []event.RecordedEvent{
		recorded(1, event.TypeClick, "#login", nil),
		recorded(2, event.TypeInput, "#email", map[string]any{"value": "x"}),
	}}
	recB := event.Recording{Name: "b", Events: []event.RecordedEvent{
		recorded(1, event.TypeClick, "#login", nil),
		recorded(2, event.TypeClick, "#logout", nil),
	}}
	recC := event.Recording{Name: "c", Events: []event.RecordedEvent{
		recorded(1, event.TypeClick, "#login", nil),
	}}

	common := ExtractCommonPatterns([]event.Recording{recA, recB, recC}, 2)
	if len(common) != 1 {
		t.Fatalf("common = %d patterns, want 1: %+v", len(common), common)
	}
	if common[0].Selector != "#login" || common[0].Occurrences != 3 {
		t.Fatalf("pattern = %+v, want #login x3", common[0])
	}

	all := ExtractCommonPatterns([]event.Recording{recA, recB, recC}, 1)
	if len(all) != 3 {
		t.Fatalf("all = %d patterns, want 3", len(all))
	}
	// First-seen order is stable.
	if all[0].Selector != "#login" || all[1].Selector != "#email" || all[2].Selector != "#logout" {
		t.Fatalf("order = %q %q %q", all[0].Selector, all[1].Selector, all[2].Selector)
	}
}

// ============================================
// Catalog and instantiation
// ============================================

func TestApplyTemplate_SubstitutesParameters(t *testing.T) {
	t.Parallel()
	x := NewExtractor()
	id := x.RegisterTemplate(BuildTemplate("login", loginEvents(), true))

	events, err := x.ApplyTemplate(id, map[string]any{
		"selector_1": "#user-email",
		"value_1":    "c@d.org",
		"selector_2": "#user-password",
		"value_2":    "s3cret",
		"selector_3": "#sign-in",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if got := events[0].Metadata.Selector; got != "#user-email" {
		t.Fatalf("selector = %q", got)
	}
	if got := events[0].Value(); got != "c@d.org" {
		t.Fatalf("value = %q", got)
	}
	if got := events[2].Metadata.Selector; got != "#sign-in" {
		t.Fatalf("selector = %q", got)
	}
	for i, e := range events {
		if e.Sequence != i+1 {
			t.Fatalf("sequence %d = %d", i, e.Sequence)
		}
		if e.ID == "" || e.ID == "evt_seed" {
			t.Fatalf("event %d kept the seed id %q", i, e.ID)
		}
	}
}

func TestApplyTemplate_TypedSubstitution(t *testing.T) {
	t.Parallel()
	x := NewExtractor()
	id := x.RegisterTemplate(Template{
		Name: "wait",
		Events: []EventPattern{
			{Type: event.TypeWait, Data: map[string]any{"ms": "{{delay}}"}},
		},
		Parameters: []ParameterDefinition{
			{Name: "delay", Type: "number", Required: true},
		},
	})

	events, err := x.ApplyTemplate(id, map[string]any{"delay": 250})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, ok := events[0].Data["ms"].(int); !ok || got != 250 {
		t.Fatalf("ms = %v (%T), want int 250", events[0].Data["ms"], events[0].Data["ms"])
	}
}

func TestApplyTemplate_MissingRequiredParameter(t *testing.T) {
	t.Parallel()
	x := NewExtractor()
	id := x.RegisterTemplate(Template{
		Name: "fill",
		Events: []EventPattern{
			{Type: event.TypeInput, Selector: "{{field}}", Data: map[string]any{"value": "{{value}}"}},
		},
		Parameters: []ParameterDefinition{
			{Name: "field", Type: "string", Required: true},
			{Name: "value", Type: "string", Required: true},
		},
	})

	_, err := x.ApplyTemplate(id, map[string]any{"field": "#email"})
	var paramErr *event.ParameterValidationError
	if !errors.As(err, &paramErr) {
		t.Fatalf("error = %v, want ParameterValidationError", err)
	}
	if len(paramErr.Missing) != 1 || paramErr.Missing[0] != "value" {
		t.Fatalf("missing = %v, want [value]", paramErr.Missing)
	}
}

func TestApplyTemplate_CollectsAllViolations(t *testing.T) {
	t.Parallel()
	x := NewExtractor()
	id := x.RegisterTemplate(Template{
		Name: "mixed",
		Events: []EventPattern{
			{Type: event.TypeWait, Data: map[string]any{"ms": "{{delay}}"}},
		},
		Parameters: []ParameterDefinition{
			{Name: "delay", Type: "number", Required: true},
			{Name: "label", Type: "string", Required: true},
		},
	})

	_, err := x.ApplyTemplate(id, map[string]any{
		"delay": "soon",
		"bogus": true,
		"extra": 1,
	})
	var paramErr *event.ParameterValidationError
	if !errors.As(err, &paramErr) {
		t.Fatalf("error = %v, want ParameterValidationError", err)
	}
	if len(paramErr.Missing) != 1 || paramErr.Missing[0] != "label" {
		t.Fatalf("missing = %v", paramErr.Missing)
	}
	if len(paramErr.Mismatched) != 1 || paramErr.Mismatched[0] != "delay" {
		t.Fatalf("mismatched = %v", paramErr.Mismatched)
	}
	if got, want := paramErr.Unknown, []string{"bogus", "extra"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unknown = %v, want %v", got, want)
	}
}

func TestApplyTemplate_UnknownID(t *testing.T) {
	t.Parallel()
	x := NewExtractor()
	_, err := x.ApplyTemplate("ptn_missing", nil)
	var notFound *event.TemplateNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want TemplateNotFoundError", err)
	}
}

func TestRegisterTemplate_AssignsID(t *testing.T) {
	t.Parallel()
	x := NewExtractor()
	id := x.RegisterTemplate(Template{Name: "anon"})
	if id == "" {
		t.Fatal("no id assigned")
	}
	if _, err := x.Template(id); err != nil {
		t.Fatalf("lookup by assigned id: %v", err)
	}
	if got := x.Templates(); len(got) != 1 || got[0].Name != "anon" {
		t.Fatalf("templates = %+v", got)
	}
}

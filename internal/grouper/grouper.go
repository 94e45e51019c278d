// grouper.go — Partitions the processed event sequence into semantic groups.
// Single forward pass with one-event lookahead; every event lands in exactly
// one group and groups preserve original order.
package grouper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/flowlens/flowlens/internal/event"
)

// formFamily are the types that continue a form interaction run.
var formFamily = map[event.Type]bool{
	event.TypeInput: true, event.TypeChange: true,
	event.TypeFocus: true, event.TypeBlur: true,
	event.TypeSelect: true,
}

// open is the group being accumulated during the forward pass.
type open struct {
	events    []event.RecordedEvent
	scope     string // form scope of the group, "" when none established
	completed bool   // a submit landed; only assertions may still attach
}

// Group partitions events into ordered EventGroups. Boundary rules, in order:
// navigation always starts a new group; an assertion attaches to the open
// group; form-family events sharing a form scope stay together; a submit or
// click on a different scope closes the current group.
func Group(events []event.RecordedEvent) []event.EventGroup {
	var groups []event.EventGroup
	var cur *open

	flush := func() {
		if cur == nil || len(cur.events) == 0 {
			return
		}
		groups = append(groups, finalize(*cur, len(groups)+1))
		cur = nil
	}

	for i, e := range events {
		// A submit marked the open group completed; only assertions on the
		// outcome may still attach.
		if cur != nil && cur.completed && e.Type != event.TypeAssertion {
			flush()
		}

		switch {
		case e.Type == event.TypeNavigation:
			flush()
			cur = &open{events: []event.RecordedEvent{e}}

		case e.Type == event.TypeAssertion:
			if cur == nil {
				cur = &open{}
			}
			cur.events = append(cur.events, e)

		case formFamily[e.Type]:
			scope := e.Target.FormScope()
			if cur != nil && cur.scope != "" && scope != "" && cur.scope != scope {
				flush()
			}
			if cur == nil {
				cur = &open{}
			}
			if cur.scope == "" {
				cur.scope = scope
			}
			cur.events = append(cur.events, e)

		case e.Type == event.TypeSubmit || e.Type == event.TypeClick || e.Type == event.TypeDblClick:
			scope := e.Target.FormScope()
			if cur != nil && differentScope(cur.scope, scope) {
				flush()
			}
			if cur == nil {
				cur = &open{}
			}
			if cur.scope == "" && scope != "" {
				cur.scope = scope
			}
			cur.events = append(cur.events, e)
			if e.Type == event.TypeSubmit {
				// Lookahead: flush now unless the next event asserts on the
				// submit's outcome; then the assertion joins this group.
				if i+1 >= len(events) || events[i+1].Type != event.TypeAssertion {
					flush()
				} else {
					cur.completed = true
				}
			}

		default:
			if cur == nil {
				cur = &open{}
			}
			cur.events = append(cur.events, e)
		}
	}
	flush()
	return groups
}

// differentScope reports whether a click/submit scope breaks the open group.
// An unscoped click inside a scoped group does not break it; two distinct
// non-empty scopes do.
func differentScope(current, next string) bool {
	return current != "" && next != "" && current != next
}

// finalize classifies and names a completed group.
func finalize(o open, ordinal int) event.EventGroup {
	actionType := classify(o.events)
	name, description := describe(actionType, o.events)
	return event.EventGroup{
		ID:          fmt.Sprintf("group_%d", ordinal),
		ActionType:  actionType,
		Name:        name,
		Description: description,
		Events:      o.events,
	}
}

// classify derives the dominant action type from group membership.
func classify(events []event.RecordedEvent) event.ActionType {
	if len(events) > 0 && events[0].Type == event.TypeNavigation {
		return event.ActionNavigation
	}
	allAssertions := true
	hasForm := false
	hasClick := false
	for _, e := range events {
		if e.Type != event.TypeAssertion {
			allAssertions = false
		}
		if formFamily[e.Type] || e.Type == event.TypeSubmit {
			hasForm = true
		}
		if e.Type == event.TypeClick || e.Type == event.TypeDblClick {
			hasClick = true
		}
	}
	switch {
	case allAssertions:
		return event.ActionAssertion
	case hasForm:
		return event.ActionFormInteraction
	case hasClick:
		return event.ActionClickSequence
	default:
		return event.ActionInteraction
	}
}

// describe synthesizes the human-readable name and description.
func describe(actionType event.ActionType, events []event.RecordedEvent) (string, string) {
	switch actionType {
	case event.ActionNavigation:
		host := navigationHost(events[0])
		name := "Navigate"
		if host != "" {
			name = "Navigate to " + host
		}
		return name, fmt.Sprintf("Navigation followed by %d interaction(s)", len(events)-1)
	case event.ActionFormInteraction:
		scope := ""
		for _, e := range events {
			if s := e.Target.FormScope(); s != "" {
				scope = s
				break
			}
		}
		name := "Fill form"
		if scope != "" {
			name = "Fill form " + scope
		}
		return name, fmt.Sprintf("Form interaction with %d event(s)", len(events))
	case event.ActionAssertion:
		return "Verify page state", fmt.Sprintf("%d assertion(s)", len(events))
	case event.ActionClickSequence:
		label := targetLabel(events[0].Target)
		return "Click " + label, fmt.Sprintf("Click sequence with %d event(s)", len(events))
	default:
		return "Interact with page", fmt.Sprintf("%d event(s)", len(events))
	}
}

// navigationHost extracts the destination host from a navigation event.
func navigationHost(e event.RecordedEvent) string {
	raw, _ := e.Data["url"].(string)
	if raw == "" {
		raw = e.Context.URL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

// targetLabel names an element for group titles: text, id, then tag.
func targetLabel(t event.TargetDescriptor) string {
	if text := strings.TrimSpace(t.Text); text != "" {
		// Truncate on rune boundaries so multi-byte text stays valid UTF-8.
		if runes := []rune(text); len(runes) > 30 {
			text = string(runes[:30])
		}
		return fmt.Sprintf("%q", text)
	}
	if id := t.Attr("id"); id != "" {
		return "#" + id
	}
	if t.Tag != "" {
		return t.Tag
	}
	return "element"
}

// Flatten concatenates group members back into a single ordered list.
// For any processed sequence, Flatten(Group(events)) equals events.
func Flatten(groups []event.EventGroup) []event.RecordedEvent {
	var out []event.RecordedEvent
	for _, g := range groups {
		out = append(out, g.Events...)
	}
	return out
}

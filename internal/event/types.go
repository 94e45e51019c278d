// types.go — Core data model for captured interactions.
// Events are immutable once captured; user edits go through the copy-on-write
// helpers (WithAnnotation, WithData) rather than direct mutation.
package event

import "strings"

// ============================================
// Event Types (closed enumeration)
// ============================================

// Type identifies the kind of interaction an event records.
type Type string

const (
	TypeNavigation  Type = "navigation"
	TypeClick       Type = "click"
	TypeDblClick    Type = "dblclick"
	TypeInput       Type = "input"
	TypeChange      Type = "change"
	TypeKeyDown     Type = "keydown"
	TypeKeyUp       Type = "keyup"
	TypeKeyPress    Type = "keypress"
	TypeSubmit      Type = "submit"
	TypeScroll      Type = "scroll"
	TypeWait        Type = "wait"
	TypeAssertion   Type = "assertion"
	TypeFocus       Type = "focus"
	TypeBlur        Type = "blur"
	TypeSelect      Type = "select"
	TypeContextMenu Type = "contextmenu"
	TypeWheel       Type = "wheel"
	TypeCustom      Type = "custom"
)

// knownTypes is the closed set of event types the pipeline understands.
var knownTypes = map[Type]bool{
	TypeNavigation: true, TypeClick: true, TypeDblClick: true,
	TypeInput: true, TypeChange: true, TypeKeyDown: true,
	TypeKeyUp: true, TypeKeyPress: true, TypeSubmit: true,
	TypeScroll: true, TypeWait: true, TypeAssertion: true,
	TypeFocus: true, TypeBlur: true, TypeSelect: true,
	TypeContextMenu: true, TypeWheel: true, TypeCustom: true,
}

// Known reports whether t is part of the closed event type enumeration.
func (t Type) Known() bool {
	return knownTypes[t]
}

// ============================================
// Target Snapshot
// ============================================

// Rect is the bounding geometry of an element at capture time.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PathNode is one ancestor in an element's path, root first.
type PathNode struct {
	Tag          string   `json:"tag"`
	ID           string   `json:"id,omitempty"`
	Classes      []string `json:"classes,omitempty"`
	Index        int      `json:"index"`         // 1-based position among same-tag siblings
	SiblingCount int      `json:"sibling_count"` // same-tag siblings at this level, including self
}

// TargetDescriptor is an immutable snapshot of one element at capture time.
type TargetDescriptor struct {
	Tag        string            `json:"tag"`
	Text       string            `json:"text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Bounds     Rect              `json:"bounds,omitempty"`
	Path       []PathNode        `json:"path,omitempty"` // ancestors, root first; last entry is the element itself
}

// formScopeTags are ancestor tags that establish a logical form scope.
var formScopeTags = map[string]bool{
	"form": true, "fieldset": true, "dialog": true,
}

// FormScope returns a stable key for the nearest enclosing form-like ancestor,
// or "" when the element is not inside one.
func (t TargetDescriptor) FormScope() string {
	for i := len(t.Path) - 1; i >= 0; i-- {
		node := t.Path[i]
		if !formScopeTags[node.Tag] {
			continue
		}
		if node.ID != "" {
			return node.Tag + "#" + node.ID
		}
		var b strings.Builder
		for j := 0; j <= i; j++ {
			if j > 0 {
				b.WriteString(">")
			}
			b.WriteString(t.Path[j].Tag)
		}
		return b.String()
	}
	return ""
}

// Attr returns the named attribute value, or "" when absent.
func (t TargetDescriptor) Attr(name string) string {
	if t.Attributes == nil {
		return ""
	}
	return t.Attributes[name]
}

// ============================================
// Recorded Events
// ============================================

// Viewport captures the browser viewport dimensions.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PageContext captures the page state surrounding an event.
type PageContext struct {
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	Viewport  Viewport `json:"viewport,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
}

// Metadata carries selector provenance and user annotations for an event.
type Metadata struct {
	Selector            string            `json:"selector,omitempty"`
	SelectorStrategy    string            `json:"selector_strategy,omitempty"`
	SelectorReliability float64           `json:"selector_reliability,omitempty"`
	Annotations         map[string]string `json:"annotations,omitempty"`
}

// RecordedEvent is one captured interaction. The recorder owns identity and
// sequencing during capture; afterwards the value is read-only.
type RecordedEvent struct {
	ID          string           `json:"id"`
	Sequence    int              `json:"sequence"`
	TimestampMs int64            `json:"timestamp_ms"`
	Type        Type             `json:"type"`
	Target      TargetDescriptor `json:"target"`
	Data        map[string]any   `json:"data,omitempty"`
	Context     PageContext      `json:"context"`
	Metadata    Metadata         `json:"metadata"`
}

// Value returns the event's string "value" payload ("" when absent).
func (e RecordedEvent) Value() string {
	if e.Data == nil {
		return ""
	}
	v, _ := e.Data["value"].(string)
	return v
}

// WithAnnotation returns a copy of the event with one annotation added.
func (e RecordedEvent) WithAnnotation(key, value string) RecordedEvent {
	annotations := make(map[string]string, len(e.Metadata.Annotations)+1)
	for k, v := range e.Metadata.Annotations {
		annotations[k] = v
	}
	annotations[key] = value
	e.Metadata.Annotations = annotations
	return e
}

// WithData returns a copy of the event with one data entry replaced.
func (e RecordedEvent) WithData(key string, value any) RecordedEvent {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	e.Data = data
	return e
}

// ============================================
// Event Groups
// ============================================

// ActionType classifies the semantic action an event group represents.
type ActionType string

const (
	ActionNavigation      ActionType = "navigation"
	ActionFormInteraction ActionType = "form_interaction"
	ActionClickSequence   ActionType = "click_sequence"
	ActionAssertion       ActionType = "assertion"
	ActionInteraction     ActionType = "interaction"
)

// EventGroup is a contiguous partition of the processed event sequence
// representing one semantic user action.
type EventGroup struct {
	ID          string          `json:"id"`
	ActionType  ActionType      `json:"action_type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Events      []RecordedEvent `json:"events"`
}

// Recording is a named, ordered list of captured events — the interchange
// shape the CLI reads and writes.
type Recording struct {
	Name      string          `json:"name"`
	CreatedAt string          `json:"created_at,omitempty"`
	StartURL  string          `json:"start_url,omitempty"`
	Events    []RecordedEvent `json:"events"`
}

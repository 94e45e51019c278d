// helpers.go — Payload accessors shared by the concrete generators.
package generator

import (
	"strings"

	"github.com/flowlens/flowlens/internal/event"
)

// eventURL returns the destination URL of a navigation event.
func eventURL(e event.RecordedEvent) string {
	if raw, _ := e.Data["url"].(string); raw != "" {
		return raw
	}
	return e.Context.URL
}

// eventKey returns the key name of a keyboard event ("Enter", "Tab", ...).
func eventKey(e event.RecordedEvent) string {
	key, _ := e.Data["key"].(string)
	return key
}

// waitMs returns the duration of a wait event, defaulting to 100ms.
func waitMs(e event.RecordedEvent) int64 {
	switch v := e.Data["ms"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 100
}

// scrollPosition returns the scroll target coordinates.
func scrollPosition(e event.RecordedEvent) (int64, int64) {
	toInt := func(v any) int64 {
		switch n := v.(type) {
		case int64:
			return n
		case int:
			return int64(n)
		case float64:
			return int64(n)
		}
		return 0
	}
	return toInt(e.Data["x"]), toInt(e.Data["y"])
}

// assertionExpectation extracts the assertion kind and expected value,
// defaulting to a visibility check.
func assertionExpectation(e event.RecordedEvent) (kind, expected string) {
	kind, _ = e.Data["assertType"].(string)
	if kind == "" {
		kind = "visible"
	}
	expected, _ = e.Data["expected"].(string)
	return kind, expected
}

// isTextSelector reports whether a selector uses the text= shorthand.
func isTextSelector(sel string) bool {
	return strings.HasPrefix(sel, "text=")
}

// textOf strips the text= prefix.
func textOf(sel string) string {
	return strings.TrimPrefix(sel, "text=")
}

// testIDOf extracts the value from a [data-testid="..."]-style selector,
// returning the attribute name, value, and whether it matched.
func testIDOf(sel string) (attr, value string, ok bool) {
	if !strings.HasPrefix(sel, "[data-") || !strings.HasSuffix(sel, `"]`) {
		return "", "", false
	}
	eq := strings.Index(sel, `="`)
	if eq < 0 {
		return "", "", false
	}
	return sel[1:eq], sel[eq+2 : len(sel)-2], true
}

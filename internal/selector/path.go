// path.go — Structural CSS path and XPath construction from snapshot ancestry.
package selector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/flowlens/flowlens/internal/event"
)

// segment renders one path node as a CSS simple selector.
// The position flag reports whether an nth-child disambiguator was appended.
func segment(node event.PathNode, includePosition bool) (string, bool) {
	if node.ID != "" && isCSSSafeIdent(node.ID) {
		return "#" + node.ID, false
	}
	sel := node.Tag
	if len(node.Classes) > 0 && isCSSSafeIdent(node.Classes[0]) {
		sel += "." + node.Classes[0]
	}
	if includePosition && node.SiblingCount > 1 {
		return fmt.Sprintf("%s:nth-child(%d)", sel, node.Index), true
	}
	return sel, false
}

// buildStructuralPath renders the element's ancestor chain as a descendant
// CSS selector. With Optimize set, the chain is collapsed to the shortest
// suffix anchored by an id-bearing ancestor — the only segment kind the
// snapshot can vouch is unique document-wide. The second return reports
// whether any nth-child disambiguator was required.
func buildStructuralPath(target event.TargetDescriptor, cfg Config) (string, bool) {
	path := target.Path
	if len(path) == 0 {
		if target.Tag == "" {
			return "", false
		}
		path = []event.PathNode{{Tag: target.Tag, Index: 1, SiblingCount: 1}}
	}

	start := 0
	if cfg.Optimize {
		for i := len(path) - 1; i >= 0; i-- {
			if path[i].ID != "" && isCSSSafeIdent(path[i].ID) {
				start = i
				break
			}
		}
	}

	var parts []string
	positioned := false
	for _, node := range path[start:] {
		sel, pos := segment(node, cfg.IncludePosition)
		parts = append(parts, sel)
		positioned = positioned || pos
	}
	return strings.Join(parts, " > "), positioned
}

// buildXPath renders the ancestor chain as an indexed XPath expression.
func buildXPath(target event.TargetDescriptor) string {
	if len(target.Path) == 0 {
		if target.Tag == "" {
			return ""
		}
		return "//" + target.Tag
	}
	var b strings.Builder
	for _, node := range target.Path {
		b.WriteString("/")
		b.WriteString(node.Tag)
		if node.ID != "" {
			fmt.Fprintf(&b, "[@id=%q]", node.ID)
		} else if node.SiblingCount > 1 {
			fmt.Fprintf(&b, "[%d]", node.Index)
		}
	}
	return b.String()
}

// Fingerprint returns a stable identity for a snapshot, used as the cache key
// prefix and as the Invalidate handle.
func Fingerprint(target event.TargetDescriptor) string {
	h := sha256.New()
	h.Write([]byte(target.Tag))
	h.Write([]byte{0})
	h.Write([]byte(target.Text))

	keys := make([]string, 0, len(target.Attributes))
	for k := range target.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k + "=" + target.Attributes[k]))
	}
	for _, node := range target.Path {
		fmt.Fprintf(h, "\x00%s#%s@%d/%d", node.Tag, node.ID, node.Index, node.SiblingCount)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// cacheKey folds the config flags into the cache key so differently-configured
// calls do not collide.
func (c Config) cacheKey() string {
	names := make([]string, len(c.Priority))
	for i, s := range c.Priority {
		names[i] = string(s)
	}
	return fmt.Sprintf("%s|f=%t|o=%t|p=%t", strings.Join(names, ","), c.Fallback, c.Optimize, c.IncludePosition)
}

// naming.go — Filename and identifier sanitization for emitted artifacts.
package generator

import (
	"net/url"
	"regexp"
	"strings"
)

// baseNameAllowlistRe matches any character NOT in the safe set [a-z0-9].
var baseNameAllowlistRe = regexp.MustCompile(`[^a-z0-9]+`)

var windowsReservedFilenames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeBaseName reduces arbitrary input to a safe, bounded file base name.
func SanitizeBaseName(input string) string {
	name := strings.ToLower(strings.TrimSpace(input))
	name = baseNameAllowlistRe.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if len(name) > 50 {
		name = name[:50]
		if i := strings.LastIndex(name, "-"); i > 0 {
			name = name[:i]
		}
	}
	name = strings.TrimRight(name, "-")

	if name == "" {
		name = "generated-test"
	}
	if _, reserved := windowsReservedFilenames[name]; reserved {
		name = "test-" + name
	}
	return name
}

// PageClassName derives a PascalCase class name from a navigated URL.
func PageClassName(raw string) string {
	base := "Page"
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return base
	}
	parts := strings.FieldsFunc(u.Host+"/"+strings.Trim(u.Path, "/"), func(r rune) bool {
		return r == '.' || r == '/' || r == '-' || r == '_' || r == ':'
	})
	var b strings.Builder
	for _, part := range parts {
		if part == "" || part == "www" || part == "com" || part == "org" || part == "io" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		if len(part) > 1 {
			b.WriteString(strings.ToLower(part[1:]))
		}
	}
	if b.Len() == 0 {
		return base
	}
	return b.String() + base
}

// MethodName derives a camelCase method name from a group name, with an
// ordinal fallback to keep names unique.
func MethodName(groupName string, ordinal int) string {
	words := strings.FieldsFunc(strings.ToLower(groupName), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	if len(words) == 0 {
		words = []string{"action"}
	}
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(w[1:])
		}
	}
	name := b.String()
	if name == "action" || ordinal > 0 {
		name = name + suffixForOrdinal(ordinal)
	}
	return name
}

func suffixForOrdinal(ordinal int) string {
	if ordinal == 0 {
		return ""
	}
	return string(rune('0' + (ordinal % 10)))
}

// escapeSingle escapes a value for embedding in a single-quoted string
// literal in JavaScript, TypeScript, or Python.
func escapeSingle(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// escapeDouble escapes a value for a double-quoted string literal.
func escapeDouble(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

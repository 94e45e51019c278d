// render.go — Rendering for the small templating grammar:
// {{a.b.c}} variables, {{#if cond}}...{{else}}...{{/if}} conditionals,
// {{#each arr as item}}...{{/each}} loops, and {{>id}} includes.
package template

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// maxIncludeDepth bounds recursive {{>include}} expansion.
const maxIncludeDepth = 16

// Render resolves a template id and renders it against the context.
func (e *Engine) Render(id string, ctx map[string]any) (string, error) {
	t, err := e.Get(id)
	if err != nil {
		return "", err
	}
	return e.renderString(t.Content, ctx, 0)
}

// RenderTemplate renders an unregistered template value directly.
func (e *Engine) RenderTemplate(t Template, ctx map[string]any) (string, error) {
	return e.renderString(t.Content, ctx, 0)
}

func (e *Engine) renderString(content string, ctx map[string]any, depth int) (string, error) {
	var b strings.Builder
	pos := 0
	for {
		start := strings.Index(content[pos:], "{{")
		if start < 0 {
			b.WriteString(content[pos:])
			return b.String(), nil
		}
		start += pos
		b.WriteString(content[pos:start])

		end := strings.Index(content[start:], "}}")
		if end < 0 {
			// Unterminated tag: emit literally.
			b.WriteString(content[start:])
			return b.String(), nil
		}
		end += start
		tag := strings.TrimSpace(content[start+2 : end])

		switch {
		case strings.HasPrefix(tag, "#if "):
			blockEnd, elsePos, err := findIfBlock(content, end+2)
			if err != nil {
				return "", err
			}
			thenBody := content[end+2 : blockEnd]
			elseBody := ""
			if elsePos >= 0 {
				thenBody = content[end+2 : elsePos]
				elseBody = content[elsePos+len("{{else}}") : blockEnd]
			}
			body := elseBody
			if evalCondition(strings.TrimSpace(tag[4:]), ctx) {
				body = thenBody
			}
			rendered, err := e.renderString(body, ctx, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(rendered)
			pos = blockEnd + len("{{/if}}")

		case strings.HasPrefix(tag, "#each "):
			blockEnd, err := findBlockEnd(content, end+2, "{{#each", "{{/each}}")
			if err != nil {
				return "", err
			}
			body := content[end+2 : blockEnd]
			rendered, err := e.renderEach(strings.TrimSpace(tag[6:]), body, ctx, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(rendered)
			pos = blockEnd + len("{{/each}}")

		case strings.HasPrefix(tag, ">"):
			if depth >= maxIncludeDepth {
				return "", fmt.Errorf("template_include_cycle: include depth exceeds %d", maxIncludeDepth)
			}
			includeID := strings.TrimSpace(strings.TrimPrefix(tag, ">"))
			included, err := e.Get(includeID)
			if err != nil {
				return "", err
			}
			rendered, err := e.renderString(included.Content, ctx, depth+1)
			if err != nil {
				return "", err
			}
			b.WriteString(rendered)
			pos = end + 2

		default:
			value, _ := resolvePath(ctx, tag)
			if value != nil {
				b.WriteString(fmt.Sprint(value))
			}
			pos = end + 2
		}
	}
}

// renderEach expands "{{#each path as name}}" over a slice value.
func (e *Engine) renderEach(expr, body string, ctx map[string]any, depth int) (string, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 || parts[1] != "as" {
		return "", fmt.Errorf("template_syntax_error: each expects %q, got %q", "path as name", expr)
	}
	path, name := parts[0], parts[2]

	value, _ := resolvePath(ctx, path)
	items := toSlice(value)

	var b strings.Builder
	for i, item := range items {
		child := make(map[string]any, len(ctx)+4)
		for k, v := range ctx {
			child[k] = v
		}
		child[name] = item
		child[name+"_index"] = i
		child[name+"_first"] = i == 0
		child[name+"_last"] = i == len(items)-1

		rendered, err := e.renderString(body, child, depth)
		if err != nil {
			return "", err
		}
		b.WriteString(rendered)
	}
	return b.String(), nil
}

// findIfBlock locates the matching {{/if}} for an if block starting at from,
// and the position of its top-level {{else}} (-1 when absent).
func findIfBlock(content string, from int) (blockEnd, elsePos int, err error) {
	depth := 0
	elsePos = -1
	for i := from; i < len(content); {
		next := strings.Index(content[i:], "{{")
		if next < 0 {
			break
		}
		i += next
		switch {
		case strings.HasPrefix(content[i:], "{{#if"):
			depth++
		case strings.HasPrefix(content[i:], "{{/if}}"):
			if depth == 0 {
				return i, elsePos, nil
			}
			depth--
		case strings.HasPrefix(content[i:], "{{else}}") && depth == 0:
			elsePos = i
		}
		i += 2
	}
	return 0, -1, fmt.Errorf("template_syntax_error: unterminated {{#if}} block")
}

// findBlockEnd locates the matching close tag for a block construct.
func findBlockEnd(content string, from int, openTag, closeTag string) (int, error) {
	depth := 0
	for i := from; i < len(content); {
		next := strings.Index(content[i:], "{{")
		if next < 0 {
			break
		}
		i += next
		switch {
		case strings.HasPrefix(content[i:], openTag):
			depth++
		case strings.HasPrefix(content[i:], closeTag):
			if depth == 0 {
				return i, nil
			}
			depth--
		}
		i += 2
	}
	return 0, fmt.Errorf("template_syntax_error: unterminated %s block", openTag)
}

// ============================================
// Condition evaluation
// ============================================

// comparisonOperators are matched longest-first so "===" is not read as "==".
var comparisonOperators = []string{"===", "!==", "==", "!=", ">=", "<=", ">", "<"}

// evalCondition evaluates "left op right" with numeric and string operands,
// or bare-path truthiness when no operator is present.
func evalCondition(expr string, ctx map[string]any) bool {
	for _, op := range comparisonOperators {
		idx := strings.Index(expr, " "+op+" ")
		if idx < 0 {
			continue
		}
		left := resolveOperand(strings.TrimSpace(expr[:idx]), ctx)
		right := resolveOperand(strings.TrimSpace(expr[idx+len(op)+2:]), ctx)
		return compare(left, right, op)
	}
	value, _ := resolvePath(ctx, expr)
	return truthy(value)
}

// resolveOperand interprets a literal (quoted string, number, boolean) or a
// context path.
func resolveOperand(token string, ctx map[string]any) any {
	if len(token) >= 2 {
		if (token[0] == '\'' && token[len(token)-1] == '\'') ||
			(token[0] == '"' && token[len(token)-1] == '"') {
			return token[1 : len(token)-1]
		}
	}
	if n, err := strconv.ParseFloat(token, 64); err == nil {
		return n
	}
	if token == "true" {
		return true
	}
	if token == "false" {
		return false
	}
	value, _ := resolvePath(ctx, token)
	return value
}

func compare(left, right any, op string) bool {
	lnum, lok := toNumber(left)
	rnum, rok := toNumber(right)

	switch op {
	case ">=", "<=", ">", "<":
		if lok && rok {
			switch op {
			case ">=":
				return lnum >= rnum
			case "<=":
				return lnum <= rnum
			case ">":
				return lnum > rnum
			case "<":
				return lnum < rnum
			}
		}
		ls, rs := fmt.Sprint(left), fmt.Sprint(right)
		switch op {
		case ">=":
			return ls >= rs
		case "<=":
			return ls <= rs
		case ">":
			return ls > rs
		case "<":
			return ls < rs
		}
	case "===":
		if lok && rok {
			return lnum == rnum && sameKind(left, right)
		}
		return sameKind(left, right) && fmt.Sprint(left) == fmt.Sprint(right)
	case "!==":
		return !compare(left, right, "===")
	case "==":
		if lok && rok {
			return lnum == rnum
		}
		return fmt.Sprint(left) == fmt.Sprint(right)
	case "!=":
		return !compare(left, right, "==")
	}
	return false
}

// sameKind reports whether two values share a comparable dynamic kind,
// treating all numeric widths as one kind.
func sameKind(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	_, anum := toNumber(a)
	_, bnum := toNumber(b)
	if anum || bnum {
		return anum && bnum
	}
	return reflect.TypeOf(a).Kind() == reflect.TypeOf(b).Kind()
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int, int32, int64, float32, float64:
		n, _ := toNumber(t)
		return n != 0
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
			return rv.Len() > 0
		}
		return true
	}
}

// toSlice normalizes a context value into an iterable []any.
func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// resolvePath walks a dotted path through nested maps.
func resolvePath(ctx map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current any = ctx
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

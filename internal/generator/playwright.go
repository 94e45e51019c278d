// playwright.go — Playwright/TypeScript statement synthesis and scaffolding.
package generator

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/template"
)

// Playwright emits TypeScript test files for @playwright/test.
type Playwright struct {
	templates *template.Engine
}

func (p *Playwright) Framework() string     { return "playwright" }
func (p *Playwright) Language() string      { return "typescript" }
func (p *Playwright) CommentPrefix() string { return "//" }

func (p *Playwright) TestFilename(base string) string { return base + ".spec.ts" }

func (p *Playwright) GenerateSetupCode(cfg Config) []string {
	lines := []string{
		"import { test, expect } from '@playwright/test';",
		"",
		fmt.Sprintf("test('%s', async ({ page }) => {", escapeSingle(testTitle(cfg))),
	}
	if cfg.BaseURL != "" {
		lines = append(lines, fmt.Sprintf("  await page.goto('%s');", escapeSingle(cfg.BaseURL)))
	}
	return lines
}

func (p *Playwright) GenerateTeardownCode() []string {
	return []string{"});"}
}

func (p *Playwright) GenerateEventCode(e event.RecordedEvent) string {
	sel := p.OptimizeSelector(e.Metadata.Selector, e.Target).Optimized
	switch e.Type {
	case event.TypeNavigation:
		return fmt.Sprintf("  await page.goto('%s');\n", escapeSingle(eventURL(e)))
	case event.TypeClick:
		return fmt.Sprintf("  await page.click('%s');\n", escapeSingle(sel))
	case event.TypeDblClick:
		return fmt.Sprintf("  await page.dblclick('%s');\n", escapeSingle(sel))
	case event.TypeContextMenu:
		return fmt.Sprintf("  await page.click('%s', { button: 'right' });\n", escapeSingle(sel))
	case event.TypeInput, event.TypeChange:
		return fmt.Sprintf("  await page.fill('%s', '%s');\n", escapeSingle(sel), escapeSingle(e.Value()))
	case event.TypeSelect:
		return fmt.Sprintf("  await page.selectOption('%s', '%s');\n", escapeSingle(sel), escapeSingle(e.Value()))
	case event.TypeKeyDown, event.TypeKeyUp, event.TypeKeyPress:
		key := eventKey(e)
		if key == "" {
			return ""
		}
		return fmt.Sprintf("  await page.press('%s', '%s');\n", escapeSingle(sel), escapeSingle(key))
	case event.TypeSubmit:
		return fmt.Sprintf("  await page.locator('%s').evaluate((form: HTMLFormElement) => form.submit());\n", escapeSingle(sel))
	case event.TypeFocus:
		return fmt.Sprintf("  await page.focus('%s');\n", escapeSingle(sel))
	case event.TypeBlur:
		return fmt.Sprintf("  await page.locator('%s').blur();\n", escapeSingle(sel))
	case event.TypeScroll:
		x, y := scrollPosition(e)
		return fmt.Sprintf("  await page.mouse.wheel(%d, %d);\n", x, y)
	case event.TypeWait:
		return fmt.Sprintf("  await page.waitForTimeout(%d);\n", waitMs(e))
	}
	return ""
}

func (p *Playwright) GenerateAssertions(events []event.RecordedEvent) []string {
	var lines []string
	for _, e := range events {
		sel := p.OptimizeSelector(e.Metadata.Selector, e.Target).Optimized
		kind, expected := assertionExpectation(e)
		switch kind {
		case "text":
			lines = append(lines, fmt.Sprintf("  await expect(page.locator('%s')).toHaveText('%s');",
				escapeSingle(sel), escapeSingle(expected)))
		case "value":
			lines = append(lines, fmt.Sprintf("  await expect(page.locator('%s')).toHaveValue('%s');",
				escapeSingle(sel), escapeSingle(expected)))
		case "url":
			lines = append(lines, fmt.Sprintf("  await expect(page).toHaveURL('%s');", escapeSingle(expected)))
		default:
			lines = append(lines, fmt.Sprintf("  await expect(page.locator('%s')).toBeVisible();", escapeSingle(sel)))
		}
	}
	return lines
}

// OptimizeSelector keeps attribute selectors as-is (Playwright resolves them
// natively) and maps the text= shorthand onto Playwright's text engine.
func (p *Playwright) OptimizeSelector(sel string, target event.TargetDescriptor) SelectorOptimization {
	opt := SelectorOptimization{Original: sel, Optimized: sel, Strategy: "css"}
	switch {
	case sel == "":
		opt.Optimized = target.Tag
		opt.Strategy = "tag"
	case isTextSelector(sel):
		opt.Optimized = "text=" + textOf(sel)
		opt.Strategy = "text"
	default:
		if _, _, ok := testIDOf(sel); ok {
			opt.Strategy = "testid"
		}
	}
	return opt
}

func (p *Playwright) GenerateConfigFile(cfg Config) (GeneratedTestFile, bool) {
	content, err := p.templates.Render("playwright-config", configContext(cfg))
	if err != nil {
		return GeneratedTestFile{}, false
	}
	return GeneratedTestFile{Filename: "playwright.config.ts", Content: content, Type: "config"}, true
}

func (p *Playwright) GeneratePageObject(po PageObject, cfg Config) (GeneratedTestFile, bool) {
	methods := make([]any, 0, len(po.Methods))
	for _, m := range po.Methods {
		var body strings.Builder
		for _, e := range m.Events {
			stmt := p.GenerateEventCode(e)
			if stmt == "" {
				continue
			}
			// Page object methods act on this.page rather than the fixture.
			body.WriteString("  " + strings.ReplaceAll(stmt, "page.", "this.page."))
		}
		methods = append(methods, map[string]any{"name": m.Name, "body": body.String()})
	}
	content, err := p.templates.Render("page-object-ts", map[string]any{
		"className": po.Name,
		"url":       po.URL,
		"methods":   methods,
	})
	if err != nil {
		return GeneratedTestFile{}, false
	}
	return GeneratedTestFile{
		Filename: "pages/" + po.Name + ".page.ts",
		Content:  content,
		Type:     "page-object",
	}, true
}

// configContext maps the generation config onto the template context shared
// by the built-in config scaffolds.
func configContext(cfg Config) map[string]any {
	return map[string]any{
		"baseURL":  cfg.BaseURL,
		"headless": cfg.Headless,
		"viewport": map[string]any{
			"width":  cfg.Viewport.Width,
			"height": cfg.Viewport.Height,
		},
	}
}

// testTitle names the emitted test case.
func testTitle(cfg Config) string {
	if cfg.TestName != "" {
		return cfg.TestName
	}
	return "recorded flow"
}

// puppeteer.go — Puppeteer/JavaScript statement synthesis and scaffolding.
package generator

import (
	"fmt"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/template"
)

// Puppeteer emits Jest test files driving puppeteer via jest-puppeteer.
type Puppeteer struct {
	templates *template.Engine
}

func (p *Puppeteer) Framework() string     { return "puppeteer" }
func (p *Puppeteer) Language() string      { return "javascript" }
func (p *Puppeteer) CommentPrefix() string { return "//" }

func (p *Puppeteer) TestFilename(base string) string { return base + ".test.js" }

func (p *Puppeteer) GenerateSetupCode(cfg Config) []string {
	lines := []string{
		fmt.Sprintf("describe('%s', () => {", escapeSingle(testTitle(cfg))),
		"  test('replays the recorded interactions', async () => {",
	}
	if cfg.BaseURL != "" {
		lines = append(lines, fmt.Sprintf("  await page.goto('%s');", escapeSingle(cfg.BaseURL)))
	}
	return lines
}

func (p *Puppeteer) GenerateTeardownCode() []string {
	return []string{"  });", "});"}
}

// selector resolves the text= shorthand to an XPath expression; puppeteer's
// query API has no text engine.
func (p *Puppeteer) selector(sel string, target event.TargetDescriptor) (string, bool) {
	opt := p.OptimizeSelector(sel, target)
	if opt.Strategy == "text" {
		return fmt.Sprintf("::-p-xpath(//*[normalize-space()='%s'])", escapeSingle(textOf(opt.Optimized))), true
	}
	return opt.Optimized, false
}

func (p *Puppeteer) GenerateEventCode(e event.RecordedEvent) string {
	sel, _ := p.selector(e.Metadata.Selector, e.Target)
	switch e.Type {
	case event.TypeNavigation:
		return fmt.Sprintf("  await page.goto('%s');\n", escapeSingle(eventURL(e)))
	case event.TypeClick:
		return fmt.Sprintf("  await page.click('%s');\n", escapeSingle(sel))
	case event.TypeDblClick:
		return fmt.Sprintf("  await page.click('%s', { clickCount: 2 });\n", escapeSingle(sel))
	case event.TypeContextMenu:
		return fmt.Sprintf("  await page.click('%s', { button: 'right' });\n", escapeSingle(sel))
	case event.TypeInput, event.TypeChange:
		return fmt.Sprintf("  await page.$eval('%s', el => (el.value = ''));\n  await page.type('%s', '%s');\n",
			escapeSingle(sel), escapeSingle(sel), escapeSingle(e.Value()))
	case event.TypeSelect:
		return fmt.Sprintf("  await page.select('%s', '%s');\n", escapeSingle(sel), escapeSingle(e.Value()))
	case event.TypeKeyDown, event.TypeKeyUp, event.TypeKeyPress:
		key := eventKey(e)
		if key == "" {
			return ""
		}
		return fmt.Sprintf("  await page.keyboard.press('%s');\n", escapeSingle(key))
	case event.TypeSubmit:
		return fmt.Sprintf("  await page.$eval('%s', form => form.submit());\n", escapeSingle(sel))
	case event.TypeFocus:
		return fmt.Sprintf("  await page.focus('%s');\n", escapeSingle(sel))
	case event.TypeScroll:
		x, y := scrollPosition(e)
		return fmt.Sprintf("  await page.evaluate(() => window.scrollTo(%d, %d));\n", x, y)
	case event.TypeWait:
		return fmt.Sprintf("  await new Promise(r => setTimeout(r, %d));\n", waitMs(e))
	}
	return ""
}

func (p *Puppeteer) GenerateAssertions(events []event.RecordedEvent) []string {
	var lines []string
	for _, e := range events {
		sel, _ := p.selector(e.Metadata.Selector, e.Target)
		kind, expected := assertionExpectation(e)
		switch kind {
		case "text":
			lines = append(lines, fmt.Sprintf("  expect(await page.$eval('%s', el => el.textContent.trim())).toBe('%s');",
				escapeSingle(sel), escapeSingle(expected)))
		case "value":
			lines = append(lines, fmt.Sprintf("  expect(await page.$eval('%s', el => el.value)).toBe('%s');",
				escapeSingle(sel), escapeSingle(expected)))
		case "url":
			lines = append(lines, fmt.Sprintf("  expect(page.url()).toBe('%s');", escapeSingle(expected)))
		default:
			lines = append(lines, fmt.Sprintf("  expect(await page.$('%s')).not.toBeNull();", escapeSingle(sel)))
		}
	}
	return lines
}

// OptimizeSelector prefers the raw attribute form; puppeteer resolves CSS
// natively and text selectors degrade to XPath at emission time.
func (p *Puppeteer) OptimizeSelector(sel string, target event.TargetDescriptor) SelectorOptimization {
	opt := SelectorOptimization{Original: sel, Optimized: sel, Strategy: "css"}
	switch {
	case sel == "":
		opt.Optimized = target.Tag
		opt.Strategy = "tag"
	case isTextSelector(sel):
		opt.Strategy = "text"
	default:
		if _, _, ok := testIDOf(sel); ok {
			opt.Strategy = "testid"
		}
	}
	return opt
}

func (p *Puppeteer) GenerateConfigFile(cfg Config) (GeneratedTestFile, bool) {
	content, err := p.templates.Render("puppeteer-config", configContext(cfg))
	if err != nil {
		return GeneratedTestFile{}, false
	}
	return GeneratedTestFile{Filename: "jest.config.js", Content: content, Type: "config"}, true
}

// GeneratePageObject is not emitted for Puppeteer; the jest-puppeteer global
// page fixture leaves no natural home for per-URL classes.
func (p *Puppeteer) GeneratePageObject(po PageObject, cfg Config) (GeneratedTestFile, bool) {
	return GeneratedTestFile{}, false
}
